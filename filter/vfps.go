/*
DESCRIPTION
  A filter that passes frames at a reduced rate when there is no motion and
  at the full rate when there is.

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
)

// defaultFrameRate is the assumed frame rate of inputs without pacing.
const defaultFrameRate = 25

// VariableFPS is a filter that has a variable frame rate. When motion is
// detected, the filter sends all frames and when it is not, the filter
// sends frames at a reduced framerate.
type VariableFPS struct {
	filter Filter
	dst    io.WriteCloser
	frames uint
	count  uint
}

// NewVariableFPS returns a pointer to a new VariableFPS filter struct. Every
// fps/minFPS'th frame goes straight to dst, the rest go through filter. An
// fps of zero is taken to be the default frame rate.
func NewVariableFPS(dst io.WriteCloser, fps, minFPS uint, filter Filter) *VariableFPS {
	if fps == 0 {
		fps = defaultFrameRate
	}
	frames := uint(1)
	if minFPS > 0 && fps/minFPS > 1 {
		frames = fps / minFPS
	}
	return &VariableFPS{filter, dst, frames, 0}
}

// Implements io.Writer.
// Write applies the motion filter to the video stream. Frames are sent
// at a reduced frame rate, except when motion is detected, then all frames
// with motion are sent.
func (v *VariableFPS) Write(f []byte) (int, error) {
	v.count = (v.count + 1) % v.frames

	if v.count == 0 {
		return v.dst.Write(f)
	}

	return v.filter.Write(f)
}

// Implements io.Closer.
// Close calls the motion filter's Close method.
func (v *VariableFPS) Close() error {
	return v.filter.Close()
}
