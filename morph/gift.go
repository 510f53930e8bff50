/*
DESCRIPTION
  gift.go provides a pure Go implementation of Morphology using the rank
  filters of the gift image processing package. Erosion is a minimum filter
  and dilation a maximum filter over a square kernel.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package morph

import (
	"fmt"
	"image"

	"github.com/disintegration/gift"

	"github.com/ausocean/motion/frame"
)

// Gift implements Morphology with a square structuring element of side
// Kernel. Pixels beyond the border replicate the edge, which for a square
// element has the same effect as ignoring them.
type Gift struct {
	Kernel int
}

// NewGift returns a Gift morphology with a kernel of side k; k must be odd
// and at least 3.
func NewGift(k int) (*Gift, error) {
	if k < 3 || k%2 == 0 {
		return nil, fmt.Errorf("invalid kernel size %d", k)
	}
	return &Gift{Kernel: k}, nil
}

// Apply implements Morphology.
func (g *Gift) Apply(m *frame.Mask, op Op, iterations int) (*frame.Mask, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("invalid iteration count %d", iterations)
	}
	if iterations == 0 {
		return m.Clone(), nil
	}

	erode := gift.Minimum(g.Kernel, false)
	dilate := gift.Maximum(g.Kernel, false)
	first, second := erode, dilate
	switch op {
	case Open:
	case Close:
		first, second = dilate, erode
	default:
		return nil, fmt.Errorf("unsupported operation %v", op)
	}

	var filters []gift.Filter
	for i := 0; i < iterations; i++ {
		filters = append(filters, first)
	}
	for i := 0; i < iterations; i++ {
		filters = append(filters, second)
	}

	src := m.Image()
	p := gift.New(filters...)
	dst := image.NewGray(p.Bounds(src.Bounds()))
	p.Draw(dst, src)
	return frame.MaskFromImage(dst), nil
}
