//go:build tinygo

package main

import (
	"therapy/app"
	"therapy/hal"
)

func main() {
	app.Run(hal.New())
}
