//go:build withcv
// +build withcv

/*
DESCRIPTION
  Selects the OpenCV morphology for mask cleanup in builds with OpenCV.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"io"

	"github.com/ausocean/motion/morph"
)

// newMorphology returns a morphology with a k by k kernel. The closer must be
// closed to free the kernel.
func newMorphology(k int) (morph.Morphology, io.Closer, error) {
	m, err := morph.NewCV(k)
	if err != nil {
		return nil, nil, err
	}
	return m, m, nil
}
