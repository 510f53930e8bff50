/*
DESCRIPTION
  grid.go provides Grid, a floating point counterpart of Frame used to hold
  the running statistics of the background model.

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
	"math"
)

// Grid holds a float64 value for every pixel and channel of a frame.
type Grid struct {
	dims Dims
	pix  []float64
}

// NewGrid returns a zeroed grid of the given shape.
func NewGrid(d Dims) (*Grid, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}
	return &Grid{dims: d, pix: make([]float64, d.W*d.H*d.C)}, nil
}

// Dims returns the shape of the grid.
func (g *Grid) Dims() Dims { return g.dims }

// At returns the value at (x, y) for channel c.
func (g *Grid) At(x, y, c int) float64 { return g.pix[g.dims.offset(x, y, c)] }

// Set sets the value at (x, y) for channel c.
func (g *Grid) Set(x, y, c int, v float64) { g.pix[g.dims.offset(x, y, c)] = v }

// Row returns the interleaved values of row y, sharing storage with g.
func (g *Grid) Row(y int) []float64 {
	i := g.dims.offset(0, y, 0)
	return g.pix[i : i+g.dims.W*g.dims.C]
}

// Fill sets every value to v.
func (g *Grid) Fill(v float64) {
	for i := range g.pix {
		g.pix[i] = v
	}
}

// CopyFrom sets g to the samples of f. f must have the same shape as g.
func (g *Grid) CopyFrom(f *Frame) {
	if !g.dims.Equal(f.dims) {
		panic("frame: grid and frame shapes differ")
	}
	for i, v := range f.pix {
		g.pix[i] = float64(v)
	}
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{dims: g.dims, pix: make([]float64, len(g.pix))}
	copy(c.pix, g.pix)
	return c
}

// Channel returns a copy of the values of channel c in row major order.
func (g *Grid) Channel(c int) []float64 {
	g.dims.offset(0, 0, c)
	vals := make([]float64, 0, g.dims.W*g.dims.H)
	for i := c; i < len(g.pix); i += g.dims.C {
		vals = append(vals, g.pix[i])
	}
	return vals
}

// Image renders g as an 8-bit image for display. Each value is scaled by gain
// and saturated, i.e. min(round(|v*gain|), 255). Grey grids produce an
// *image.Gray, RGB grids an opaque *image.RGBA.
func (g *Grid) Image(gain float64) image.Image {
	r := image.Rect(0, 0, g.dims.W, g.dims.H)
	if g.dims.C == Grey {
		img := image.NewGray(r)
		for y := 0; y < g.dims.H; y++ {
			for x, v := range g.Row(y) {
				img.Pix[y*img.Stride+x] = saturate(v * gain)
			}
		}
		return img
	}

	img := image.NewRGBA(r)
	for y := 0; y < g.dims.H; y++ {
		row := g.Row(y)
		for x := 0; x < g.dims.W; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: saturate(row[3*x] * gain),
				G: saturate(row[3*x+1] * gain),
				B: saturate(row[3*x+2] * gain),
				A: 0xff,
			})
		}
	}
	return img
}

func saturate(v float64) uint8 {
	v = math.Round(math.Abs(v))
	if v > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}
