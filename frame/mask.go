/*
DESCRIPTION
  mask.go provides Mask, a binary foreground/background image.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frame

import (
	"image"
	"image/color"
)

// Mask labels.
const (
	Background uint8 = 0x00
	Foreground uint8 = 0xff
)

// Mask is a binary image with one label per pixel.
type Mask struct {
	w, h int
	pix  []uint8
}

// NewMask returns a mask of the given size with every pixel set to
// background.
func NewMask(w, h int) (*Mask, error) {
	if err := (Dims{W: w, H: h, C: Grey}).valid(); err != nil {
		return nil, err
	}
	return &Mask{w: w, h: h, pix: make([]uint8, w*h)}, nil
}

// MaskFromImage thresholds img at half intensity into a mask.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := &Mask{w: b.Dx(), h: b.Dy(), pix: make([]uint8, b.Dx()*b.Dy())}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y >= 0x80 {
				m.pix[y*m.w+x] = Foreground
			}
		}
	}
	return m
}

// Width returns the width of the mask.
func (m *Mask) Width() int { return m.w }

// Height returns the height of the mask.
func (m *Mask) Height() int { return m.h }

// Dims returns the shape of the mask as a single channel image.
func (m *Mask) Dims() Dims { return Dims{W: m.w, H: m.h, C: Grey} }

// Set labels (x, y) as foreground if fg is true, otherwise background.
func (m *Mask) Set(x, y int, fg bool) {
	v := Background
	if fg {
		v = Foreground
	}
	m.pix[m.Dims().offset(x, y, 0)] = v
}

// Foreground returns true if (x, y) is labelled foreground.
func (m *Mask) Foreground(x, y int) bool {
	return m.pix[m.Dims().offset(x, y, 0)] == Foreground
}

// Row returns the labels of row y, sharing storage with m.
func (m *Mask) Row(y int) []uint8 {
	i := m.Dims().offset(0, y, 0)
	return m.pix[i : i+m.w]
}

// Clear labels every pixel as background.
func (m *Mask) Clear() {
	for i := range m.pix {
		m.pix[i] = Background
	}
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	var n int
	for _, v := range m.pix {
		if v == Foreground {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of m.
func (m *Mask) Clone() *Mask {
	c := &Mask{w: m.w, h: m.h, pix: make([]uint8, len(m.pix))}
	copy(c.pix, m.pix)
	return c
}

// Image returns a copy of the mask as a greyscale image.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.w, m.h))
	copy(img.Pix, m.pix)
	return img
}
