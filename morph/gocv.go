//go:build withcv
// +build withcv

/*
DESCRIPTION
  gocv.go provides an OpenCV backed implementation of Morphology.

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

	"gocv.io/x/gocv"

	"github.com/ausocean/motion/frame"
)

// CV implements Morphology using gocv.MorphologyEx with a rectangular
// structuring element.
type CV struct {
	knl gocv.Mat // Structuring element.
}

// NewCV returns a CV morphology with a k by k rectangular kernel. Close must
// be called to free the kernel.
func NewCV(k int) (*CV, error) {
	if k < 3 || k%2 == 0 {
		return nil, fmt.Errorf("invalid kernel size %d", k)
	}
	return &CV{knl: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))}, nil
}

// Close frees resources used by gocv. It has to be done manually, due to
// gocv using c-go.
func (c *CV) Close() error { return c.knl.Close() }

// Apply implements Morphology.
func (c *CV) Apply(m *frame.Mask, op Op, iterations int) (*frame.Mask, error) {
	if iterations < 0 {
		return nil, fmt.Errorf("invalid iteration count %d", iterations)
	}
	if iterations == 0 {
		return m.Clone(), nil
	}

	var mop gocv.MorphType
	switch op {
	case Open:
		mop = gocv.MorphOpen
	case Close:
		mop = gocv.MorphClose
	default:
		return nil, fmt.Errorf("unsupported operation %v", op)
	}

	img := m.Image()
	src, err := gocv.NewMatFromBytes(m.Height(), m.Width(), gocv.MatTypeCV8U, img.Pix)
	if err != nil {
		return nil, fmt.Errorf("could not create mat from mask: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.MorphologyExWithParams(src, &dst, mop, c.knl, iterations, gocv.BorderConstant)

	copy(img.Pix, dst.ToBytes())
	return frame.MaskFromImage(img), nil
}
