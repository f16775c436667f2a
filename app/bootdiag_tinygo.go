//go:build tinygo && bootdebug

package app

import (
	"image/color"
	"machine"
	"sync"
	"time"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"therapy/hal"
)

var (
	bootDiagOnce sync.Once
	bootDiagMu   sync.Mutex
	bootDiagStep string
)

// bootStep records the wiring step, mirrors it to the UART and USB CDC every
// 250 ms, and shows it on screen.
func bootStep(h hal.HAL, msg string) {
	bootDiagMu.Lock()
	bootDiagStep = msg
	bootDiagMu.Unlock()

	bootDiagOnce.Do(func() { bootDiagStart(h) })
	bootScreen(h, msg)
}

func bootDiagStart(h hal.HAL) {
	l := h.Logger()
	go func() {
		for {
			bootDiagMu.Lock()
			line := "bootdiag: " + bootDiagStep
			bootDiagMu.Unlock()

			if l != nil {
				l.WriteLineString(line)
			}
			if usb := machine.USBCDC; usb != nil {
				_, _ = usb.Write([]byte(line + "\r\n"))
			}
			time.Sleep(250 * time.Millisecond)
		}
	}()
}

func bootScreen(h hal.HAL, msg string) {
	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}

	fb.ClearRGB(0, 0, 0)
	d := panicDisplay{fb: fb}
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 0, 12, "Therapy boot", fg)
	tinyfont.WriteLine(d, &proggy.TinySZ8pt7b, 0, 28, msg, fg)
	_ = fb.Present()
}
