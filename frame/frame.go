/*
DESCRIPTION
  frame.go provides Frame, a typed two dimensional grid of 8-bit multi-channel
  samples, and conversions from decoded images and JPEG data.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame provides typed pixel containers used by the background
// model: 8-bit frames, floating point grids and binary foreground masks.
// All containers are indexed by (x, y, channel) and validate their indices.
package frame

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
)

// Supported channel counts.
const (
	Grey = 1
	RGB  = 3
)

// Dims describes the shape of a frame or grid.
type Dims struct {
	W, H, C int
}

// Equal returns true if d and o describe the same shape.
func (d Dims) Equal(o Dims) bool { return d == o }

func (d Dims) String() string { return fmt.Sprintf("%dx%dx%d", d.W, d.H, d.C) }

// valid returns an error if d cannot describe a frame.
func (d Dims) valid() error {
	if d.W <= 0 || d.H <= 0 {
		return errors.Errorf("invalid frame size %dx%d", d.W, d.H)
	}
	if d.C != Grey && d.C != RGB {
		return errors.Errorf("unsupported channel count %d", d.C)
	}
	return nil
}

// offset returns the index of sample c of pixel (x, y).
func (d Dims) offset(x, y, c int) int {
	if x < 0 || x >= d.W || y < 0 || y >= d.H || c < 0 || c >= d.C {
		panic(fmt.Sprintf("frame: index (%d,%d,%d) out of range for %v", x, y, c, d))
	}
	return (y*d.W+x)*d.C + c
}

// Frame is a snapshot of one video frame. Samples are stored row major with
// channels interleaved.
type Frame struct {
	dims Dims
	pix  []uint8
}

// New returns a zeroed frame of the given size.
func New(w, h, c int) (*Frame, error) {
	d := Dims{W: w, H: h, C: c}
	if err := d.valid(); err != nil {
		return nil, err
	}
	return &Frame{dims: d, pix: make([]uint8, w*h*c)}, nil
}

// Dims returns the shape of the frame.
func (f *Frame) Dims() Dims { return f.dims }

// At returns the sample at (x, y) for channel c.
func (f *Frame) At(x, y, c int) uint8 { return f.pix[f.dims.offset(x, y, c)] }

// Set sets the sample at (x, y) for channel c.
func (f *Frame) Set(x, y, c int, v uint8) { f.pix[f.dims.offset(x, y, c)] = v }

// Fill sets every sample of every channel to v.
func (f *Frame) Fill(v uint8) {
	for i := range f.pix {
		f.pix[i] = v
	}
}

// Row returns the interleaved samples of row y. The returned slice shares
// storage with the frame.
func (f *Frame) Row(y int) []uint8 {
	i := f.dims.offset(0, y, 0)
	return f.pix[i : i+f.dims.W*f.dims.C]
}

// FromImage converts img into a frame with c channels. Grey frames use the
// luminance of the image, RGB frames take the red, green and blue components
// in that order.
func FromImage(img image.Image, c int) (*Frame, error) {
	b := img.Bounds()
	f, err := New(b.Dx(), b.Dy(), c)
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < f.dims.H; y++ {
			in := src.Pix[y*src.Stride : y*src.Stride+f.dims.W]
			row := f.Row(y)
			for x, v := range in {
				for ch := 0; ch < c; ch++ {
					row[x*c+ch] = v
				}
			}
		}
	case *image.RGBA:
		for y := 0; y < f.dims.H; y++ {
			in := src.Pix[y*src.Stride : y*src.Stride+4*f.dims.W]
			row := f.Row(y)
			for x := 0; x < f.dims.W; x++ {
				r, g, bl := in[4*x], in[4*x+1], in[4*x+2]
				if c == Grey {
					row[x] = luma(uint32(r)*0x101, uint32(g)*0x101, uint32(bl)*0x101)
					continue
				}
				row[3*x], row[3*x+1], row[3*x+2] = r, g, bl
			}
		}
	default:
		for y := 0; y < f.dims.H; y++ {
			row := f.Row(y)
			for x := 0; x < f.dims.W; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				if c == Grey {
					row[x] = luma(r, g, bl)
					continue
				}
				row[3*x], row[3*x+1], row[3*x+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			}
		}
	}
	return f, nil
}

// luma returns the 8-bit luminance of 16-bit RGB components using the same
// weights as color.GrayModel.
func luma(r, g, b uint32) uint8 {
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
	return uint8(y)
}

// DecodeImage decodes a single JPEG image.
func DecodeImage(p []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(p))
	if err != nil {
		return nil, errors.Wrap(err, "image can't be decoded")
	}
	return img, nil
}

// Decode decodes a single JPEG image into a frame with c channels.
func Decode(p []byte, c int) (*Frame, error) {
	img, err := DecodeImage(p)
	if err != nil {
		return nil, err
	}
	return FromImage(img, c)
}
