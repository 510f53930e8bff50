/*
DESCRIPTION
  background.go provides a running Gaussian average background model. Every
  pixel and channel keeps an exponentially weighted estimate of its mean and
  standard deviation, and pixels deviating by more than k standard deviations
  in any channel are classified as foreground.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package background provides an adaptive per-pixel Gaussian background
// model for separating moving foreground from a static scene.
//
// For every pixel (x, y) and channel c of a new frame F the model is updated
// from the pre-update state as
//
//	stdev' = sqrt(alpha*(F-mean)^2 + (1-alpha)*stdev^2)
//	mean'  = alpha*F + (1-alpha)*mean
//
// and a pixel is foreground when |F-mean| > k*stdev in at least one channel.
package background

import (
	"errors"
	"fmt"
	"math"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/motion/frame"
)

// Defaults.
const (
	DefaultAlpha = 0.005
	DefaultK     = 3
)

var (
	ErrUninitialised     = errors.New("background model has not been initialised")
	ErrDimensionMismatch = errors.New("frame dimensions do not match background model")
	ErrInvalidParams     = errors.New("invalid background model parameters")
)

// ResizePolicy decides what Update does with a frame whose dimensions differ
// from those of the model.
type ResizePolicy int

const (
	// Reinit discards the model statistics and seeds from the new frame.
	Reinit ResizePolicy = iota

	// Fail rejects the frame with ErrDimensionMismatch.
	Fail
)

// Params holds the tunable parameters of a Model.
type Params struct {
	// Alpha is the smoothing factor, 0 < Alpha < 1. Small values average over
	// many frames and are robust to noise; large values track changes in
	// lighting quickly.
	Alpha float64

	// K is the standard deviation multiplier of the foreground test. Larger
	// values reduce false positives at the cost of sensitivity.
	K float64

	// Workers is the number of goroutines that share the per-pixel work of
	// Update and Classify. Values below 2 process frames on the caller's
	// goroutine.
	Workers int

	// OnResize selects the dimension mismatch policy of Update.
	OnResize ResizePolicy
}

// DefaultParams returns the recommended parameters: alpha 0.005, a 3-sigma
// test, single threaded, re-initialising on resize.
func DefaultParams() Params {
	return Params{Alpha: DefaultAlpha, K: DefaultK, Workers: 1, OnResize: Reinit}
}

func (p Params) validate() error {
	if !(p.Alpha > 0 && p.Alpha < 1) {
		return fmt.Errorf("%w: alpha %v not in (0, 1)", ErrInvalidParams, p.Alpha)
	}
	if !(p.K > 0) || math.IsInf(p.K, 0) {
		return fmt.Errorf("%w: k %v not positive", ErrInvalidParams, p.K)
	}
	if p.OnResize != Reinit && p.OnResize != Fail {
		return fmt.Errorf("%w: unknown resize policy %d", ErrInvalidParams, p.OnResize)
	}
	return nil
}

// Model is a running Gaussian average background model. The zero value is
// not usable; use New. A Model must not be used concurrently.
type Model struct {
	p     Params
	beta  float64 // 1 - alpha.
	log   logging.Logger
	dims  frame.Dims
	mean  *frame.Grid
	stdev *frame.Grid
}

// New returns a new uninitialised model. The model is seeded by the first
// frame passed to Update or Init.
func New(p Params, log logging.Logger) (*Model, error) {
	err := p.validate()
	if err != nil {
		return nil, err
	}
	return &Model{p: p, beta: 1 - p.Alpha, log: log}, nil
}

// Params returns the parameters of the model.
func (m *Model) Params() Params { return m.p }

// Initialised returns true once the model has been seeded.
func (m *Model) Initialised() bool { return m.mean != nil }

// Dims returns the dimensions the model was seeded with.
func (m *Model) Dims() frame.Dims { return m.dims }

// Init seeds the model from f, setting the mean to f and the standard
// deviation to zero. Any previous statistics are discarded; the grids are
// only reallocated when the dimensions change.
func (m *Model) Init(f *frame.Frame) error {
	d := f.Dims()
	if m.mean == nil || !m.dims.Equal(d) {
		mean, err := frame.NewGrid(d)
		if err != nil {
			return fmt.Errorf("could not allocate mean grid: %w", err)
		}
		stdev, err := frame.NewGrid(d)
		if err != nil {
			return fmt.Errorf("could not allocate stdev grid: %w", err)
		}
		m.mean, m.stdev, m.dims = mean, stdev, d
	}
	m.mean.CopyFrom(f)
	m.stdev.Fill(0)
	m.log.Debug("background model seeded", "dims", d.String())
	return nil
}

// Update advances the model by one frame. The first frame seeds the model.
// A frame with different dimensions is handled according to the resize
// policy: the model is re-seeded from it, or ErrDimensionMismatch is
// returned and the model is left untouched.
func (m *Model) Update(f *frame.Frame) error {
	if !m.Initialised() {
		return m.Init(f)
	}
	if !m.dims.Equal(f.Dims()) {
		if m.p.OnResize == Fail {
			return fmt.Errorf("%w: model %v, frame %v", ErrDimensionMismatch, m.dims, f.Dims())
		}
		m.log.Info("frame dimensions changed, reinitialising background model", "from", m.dims.String(), "to", f.Dims().String())
		return m.Init(f)
	}

	a, b := m.p.Alpha, m.beta
	m.rows(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			in, mean, sd := f.Row(y), m.mean.Row(y), m.stdev.Row(y)
			for i, v := range in {
				// Both statistics are derived from the old mean and stdev
				// before either is written back. The mean is advanced as
				// mu + a*d, equal to a*v + b*mu, so a sample equal to the
				// mean leaves it exactly unchanged.
				mu, s := mean[i], sd[i]
				d := float64(v) - mu
				sd[i] = math.Sqrt(a*d*d + b*s*s)
				mean[i] = mu + a*d
			}
		}
	})
	return nil
}

// Classify writes the foreground mask of f into mask. The mask is cleared
// first, then a pixel is set to foreground if |f-mean| > k*stdev in at least
// one channel. The model is not modified.
func (m *Model) Classify(f *frame.Frame, mask *frame.Mask) error {
	if !m.Initialised() {
		return ErrUninitialised
	}
	if !m.dims.Equal(f.Dims()) {
		return fmt.Errorf("%w: model %v, frame %v", ErrDimensionMismatch, m.dims, f.Dims())
	}
	if mask.Width() != m.dims.W || mask.Height() != m.dims.H {
		return fmt.Errorf("%w: model %v, mask %v", ErrDimensionMismatch, m.dims, mask.Dims())
	}

	mask.Clear()
	k, c := m.p.K, m.dims.C
	m.rows(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			in, mean, sd, out := f.Row(y), m.mean.Row(y), m.stdev.Row(y), mask.Row(y)
			for x := range out {
				for ch := x * c; ch < (x+1)*c; ch++ {
					if math.Abs(float64(in[ch])-mean[ch]) > k*sd[ch] {
						out[x] = frame.Foreground
						break
					}
				}
			}
		}
	})
	return nil
}

// Mean returns a copy of the current mean grid, or nil if the model has not
// been initialised.
func (m *Model) Mean() *frame.Grid {
	if !m.Initialised() {
		return nil
	}
	return m.mean.Clone()
}

// Stdev returns a copy of the current standard deviation grid, or nil if the
// model has not been initialised.
func (m *Model) Stdev() *frame.Grid {
	if !m.Initialised() {
		return nil
	}
	return m.stdev.Clone()
}
