package display

import (
	"image/color"

	"tinygo.org/x/drivers"

	"therapy/hal"
)

// fbRegion draws into a horizontal band [y0, y0+h) of an RGB565 framebuffer.
type fbRegion struct {
	fb hal.Framebuffer
	y0 int
	h  int
}

func newFBRegion(fb hal.Framebuffer, y0, h int) *fbRegion {
	if fb != nil {
		if y0 > fb.Height() {
			y0 = fb.Height()
		}
		if y0+h > fb.Height() {
			h = fb.Height() - y0
		}
	}
	return &fbRegion{fb: fb, y0: y0, h: h}
}

func (d *fbRegion) usable() bool {
	return d.fb != nil && d.fb.Format() == hal.PixelFormatRGB565 && d.fb.Buffer() != nil
}

func (d *fbRegion) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.h)
}

func (d *fbRegion) SetPixel(x, y int16, c color.RGBA) {
	if !d.usable() {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.h {
		return
	}
	d.put(ix, d.y0+iy, rgb565From888(c.R, c.G, c.B))
}

func (d *fbRegion) put(x, y int, pixel uint16) {
	buf := d.fb.Buffer()
	off := y*d.fb.StrideBytes() + x*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// Display is a no-op; the service presents the whole framebuffer once per redraw.
func (d *fbRegion) Display() error { return nil }

func (d *fbRegion) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if !d.usable() {
		return nil
	}
	x0 := clampInt(int(x), 0, d.fb.Width())
	y0 := clampInt(int(y), 0, d.h)
	x1 := clampInt(int(x)+int(width), 0, d.fb.Width())
	y1 := clampInt(int(y)+int(height), 0, d.h)

	pixel := rgb565From888(c.R, c.G, c.B)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d.put(px, d.y0+py, pixel)
		}
	}
	return nil
}

func (d *fbRegion) SetScroll(line int16) {}

func (d *fbRegion) SetRotation(rotation drivers.Rotation) error { return nil }

// scrollRegion gives the terminal a display with hardware-style vertical
// scroll: drawing lands in a backing buffer and flush shows it rotated so
// that backing row `scroll` is at the top of the band.
type scrollRegion struct {
	dst    *fbRegion
	w, h   int
	pix    []uint16
	scroll int
}

func newScrollRegion(dst *fbRegion) *scrollRegion {
	w, h := dst.Size()
	return &scrollRegion{dst: dst, w: int(w), h: int(h), pix: make([]uint16, int(w)*int(h))}
}

func (s *scrollRegion) Size() (x, y int16) { return int16(s.w), int16(s.h) }

func (s *scrollRegion) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= s.w || iy < 0 || iy >= s.h {
		return
	}
	s.pix[iy*s.w+ix] = rgb565From888(c.R, c.G, c.B)
}

func (s *scrollRegion) Display() error { return nil }

func (s *scrollRegion) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := clampInt(int(x), 0, s.w)
	y0 := clampInt(int(y), 0, s.h)
	x1 := clampInt(int(x)+int(width), 0, s.w)
	y1 := clampInt(int(y)+int(height), 0, s.h)
	pixel := rgb565From888(c.R, c.G, c.B)
	for py := y0; py < y1; py++ {
		row := s.pix[py*s.w : (py+1)*s.w]
		for px := x0; px < x1; px++ {
			row[px] = pixel
		}
	}
	return nil
}

func (s *scrollRegion) SetScroll(line int16) {
	if s.h == 0 {
		return
	}
	s.scroll = ((int(line) % s.h) + s.h) % s.h
}

func (s *scrollRegion) SetRotation(rotation drivers.Rotation) error { return nil }

func (s *scrollRegion) clear() {
	for i := range s.pix {
		s.pix[i] = 0
	}
	s.scroll = 0
}

// flush copies the backing buffer to the framebuffer band.
func (s *scrollRegion) flush() {
	if !s.dst.usable() {
		return
	}
	for y := 0; y < s.h; y++ {
		src := (y + s.scroll) % s.h
		row := s.pix[src*s.w : (src+1)*s.w]
		for x, p := range row {
			s.dst.put(x, s.dst.y0+y, p)
		}
	}
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
