//go:build !(tinygo && bootdebug)

package app

import "therapy/hal"

func bootStep(hal.HAL, string) {}
