package display

import (
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"

	"therapy/firmware/proto"
)

var (
	colorBG     = color.RGBA{0, 0, 0, 255}
	colorText   = color.RGBA{220, 220, 220, 255}
	colorVital  = color.RGBA{80, 230, 120, 255}
	colorWarn   = color.RGBA{250, 180, 40, 255}
	colorMuted  = color.RGBA{110, 110, 110, 255}
	colorBanner = color.RGBA{20, 60, 110, 255}
)

// panelState is everything the status panel shows.
type panelState struct {
	heartRate uint8
	spo2      uint8
	finger    bool
	link      bool

	level     uint8
	flags     proto.StatusFlags
	remaining uint16
	duration  uint8
}

func (p panelState) vitalsText() (hr, spo2 string) {
	hr, spo2 = "--", "--"
	if p.heartRate > 0 {
		hr = fmt.Sprintf("%d", p.heartRate)
	}
	if p.spo2 > 0 {
		spo2 = fmt.Sprintf("%d%%", p.spo2)
	}
	return hr, spo2
}

func (p panelState) deviceText() string {
	dir := "fwd"
	if p.flags&proto.StatusReverse != 0 {
		dir = "rev"
	}
	heat := "off"
	if p.flags&proto.StatusHeat != 0 {
		heat = "on"
	}
	return fmt.Sprintf("level %d  %s  heat %s", p.level, dir, heat)
}

func (p panelState) sessionText() string {
	if p.flags&proto.StatusSessionActive == 0 {
		return "session idle"
	}
	state := "active"
	if p.flags&proto.StatusWarned != 0 {
		state = "ending"
	}
	return fmt.Sprintf("session %s %02d:%02d / %dmin", state, p.remaining/60, p.remaining%60, p.duration)
}

func (p panelState) fingerText() string {
	if p.finger {
		return "finger on sensor"
	}
	return "place finger on sensor"
}

const (
	bannerHeight = 14
	smallHeight  = 10
)

func drawPanel(d *fbRegion, p panelState) {
	w, h := d.Size()
	_ = d.FillRectangle(0, 0, w, h, colorBG)
	_ = d.FillRectangle(0, 0, w, bannerHeight, colorBanner)

	small := &proggy.TinySZ8pt7b
	big := &freemono.Bold18pt7b
	label := &freemono.Regular9pt7b

	tinyfont.WriteLine(d, small, 4, 10, "THERAPY", colorText)
	linkText, linkColor := "link --", colorMuted
	if p.link {
		linkText, linkColor = "link up", colorVital
	}
	_, lw := tinyfont.LineWidth(small, linkText)
	tinyfont.WriteLine(d, small, w-int16(lw)-4, 10, linkText, linkColor)

	hr, spo2 := p.vitalsText()
	vitalColor := colorVital
	if !p.finger {
		vitalColor = colorMuted
	}
	tinyfont.WriteLine(d, label, 8, 36, "HR", colorText)
	tinyfont.WriteLine(d, big, 8, 66, hr, vitalColor)
	tinyfont.WriteLine(d, label, w/2+8, 36, "SpO2", colorText)
	tinyfont.WriteLine(d, big, w/2+8, 66, spo2, vitalColor)

	fingerColor := colorText
	if !p.finger {
		fingerColor = colorWarn
	}
	tinyfont.WriteLine(d, small, 8, 80, p.fingerText(), fingerColor)
	tinyfont.WriteLine(d, small, 8, 80+smallHeight, p.deviceText(), colorText)

	sessColor := colorText
	if p.flags&proto.StatusWarned != 0 {
		sessColor = colorWarn
	}
	tinyfont.WriteLine(d, small, 8, 80+2*smallHeight, p.sessionText(), sessColor)
}
