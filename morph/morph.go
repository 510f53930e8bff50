/*
DESCRIPTION
  morph.go provides the morphology interface used to clean foreground masks
  and the fixed open-then-close cleanup applied to every raw mask.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package morph provides binary morphology for foreground masks.
package morph

import (
	"fmt"

	"github.com/ausocean/motion/frame"
)

// Op is a morphological operation.
type Op int

const (
	Open  Op = iota // Erosion followed by dilation.
	Close           // Dilation followed by erosion.
)

func (o Op) String() string {
	switch o {
	case Open:
		return "open"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Defaults for the cleanup pipeline.
const (
	DefaultKernel          = 3
	DefaultOpenIterations  = 1
	DefaultCloseIterations = 2
)

// Morphology applies op to m with the given number of iterations and returns
// the result as a new mask. As with OpenCV, an iteration count of n applies
// each of the underlying erosions and dilations n times, e.g. a close with 2
// iterations is two dilations followed by two erosions.
type Morphology interface {
	Apply(m *frame.Mask, op Op, iterations int) (*frame.Mask, error)
}

// Cleaner removes speckle from a raw foreground mask with an opening and then
// fills small holes with a closing.
type Cleaner struct {
	Morph Morphology
	Open  int // Iterations of the opening.
	Close int // Iterations of the closing.
}

// NewCleaner returns a Cleaner using m with the default iteration counts.
func NewCleaner(m Morphology) *Cleaner {
	return &Cleaner{Morph: m, Open: DefaultOpenIterations, Close: DefaultCloseIterations}
}

// Clean returns the cleaned version of m; m is not modified.
func (c *Cleaner) Clean(m *frame.Mask) (*frame.Mask, error) {
	opened, err := c.Morph.Apply(m, Open, c.Open)
	if err != nil {
		return nil, fmt.Errorf("could not open mask: %w", err)
	}
	closed, err := c.Morph.Apply(opened, Close, c.Close)
	if err != nil {
		return nil, fmt.Errorf("could not close mask: %w", err)
	}
	return closed, nil
}
