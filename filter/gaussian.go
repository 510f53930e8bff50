/*
DESCRIPTION
  A motion detection algorithm using a running Gaussian average background
  model, a k-sigma foreground test and morphological cleanup of the resulting
  foreground mask.

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
	"fmt"
	"image"
	"io"
	"math"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/motion/background"
	"github.com/ausocean/motion/frame"
	"github.com/ausocean/motion/morph"
	"github.com/ausocean/motion/surveil/config"
)

const (
	defaultGaussianPixels    = 1
	defaultGaussianStdevGain = 10.0
)

// Result holds the outcome of processing one frame with a Gaussian detector.
type Result struct {
	Seq        int          // Sequence number of the frame, from 0.
	Frame      *frame.Frame // The processed frame.
	Raw        *frame.Mask  // Foreground mask before cleanup.
	Mask       *frame.Mask  // Foreground mask after cleanup.
	Foreground int          // Number of foreground pixels in Mask.

	// Mean and Stdev render the background model after the frame was
	// applied, Stdev scaled by the configured gain. They are only set when
	// rendering is enabled or in debug builds.
	Mean  image.Image
	Stdev image.Image
}

// Ratio returns the fraction of pixels in Mask that are foreground.
func (r *Result) Ratio() float64 {
	return float64(r.Foreground) / float64(r.Mask.Width()*r.Mask.Height())
}

// GaussianOption configures a Gaussian detector.
type GaussianOption func(*Gaussian)

// WithResultHandler sets a function that is given the result of every
// processed frame. h is called synchronously from Process.
func WithResultHandler(h func(r *Result)) GaussianOption {
	return func(g *Gaussian) { g.handler = h }
}

// WithRendering enables rendering of the background model into each Result.
func WithRendering() GaussianOption {
	return func(g *Gaussian) { g.render = true }
}

// Gaussian is a motion detection algorithm. Each frame updates a running
// Gaussian average background model and is then classified against it; a
// frame has motion when its cleaned foreground mask has at least the
// configured number of pixels.
type Gaussian struct {
	debugging debugWindows
	log       logging.Logger
	model     *background.Model
	cleaner   *morph.Cleaner
	closer    io.Closer // Frees the morphology, if required.
	pix       int       // Foreground pixels needed for motion.
	gain      float64   // Gain of the rendered standard deviation.
	summary   int       // Frames between model summaries.
	seq       int       // Frame counter.
	render    bool      // Render the model into results.
	handler   func(*Result)
}

// NewGaussian returns a pointer to a new Motion filter using the Gaussian
// algorithm.
func NewGaussian(dst io.WriteCloser, c config.Config, opts ...GaussianOption) (*Motion, error) {
	alg, err := NewGaussianDetector(c, opts...)
	if err != nil {
		return nil, err
	}
	return NewMotion(dst, alg, c), nil
}

// NewGaussianDetector returns a new Gaussian algorithm.
func NewGaussianDetector(c config.Config, opts ...GaussianOption) (*Gaussian, error) {

	// Validate parameters.
	if !(c.Alpha > 0 && c.Alpha < 1) {
		c.LogInvalidField("Alpha", background.DefaultAlpha)
		c.Alpha = background.DefaultAlpha
	}
	if !(c.K > 0) || math.IsInf(c.K, 0) {
		c.LogInvalidField("K", background.DefaultK)
		c.K = background.DefaultK
	}
	if c.MotionKernel <= 0 {
		c.LogInvalidField("MotionKernel", morph.DefaultKernel)
		c.MotionKernel = morph.DefaultKernel
	}
	if c.OpenIterations <= 0 {
		c.LogInvalidField("OpenIterations", morph.DefaultOpenIterations)
		c.OpenIterations = morph.DefaultOpenIterations
	}
	if c.CloseIterations <= 0 {
		c.LogInvalidField("CloseIterations", morph.DefaultCloseIterations)
		c.CloseIterations = morph.DefaultCloseIterations
	}
	if c.MotionPixels <= 0 {
		c.LogInvalidField("MotionPixels", defaultGaussianPixels)
		c.MotionPixels = defaultGaussianPixels
	}
	if !(c.StdevGain > 0) || math.IsInf(c.StdevGain, 0) {
		c.LogInvalidField("StdevGain", defaultGaussianStdevGain)
		c.StdevGain = defaultGaussianStdevGain
	}

	p := background.Params{
		Alpha:    c.Alpha,
		K:        c.K,
		Workers:  int(c.Workers),
		OnResize: background.Reinit,
	}
	if c.ResizePolicy == config.ResizeFail {
		p.OnResize = background.Fail
	}
	model, err := background.New(p, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("could not create background model: %w", err)
	}

	m, closer, err := newMorphology(int(c.MotionKernel))
	if err != nil {
		return nil, fmt.Errorf("could not create morphology: %w", err)
	}

	g := &Gaussian{
		debugging: newWindows("GAUSSIAN"),
		log:       c.Logger,
		model:     model,
		cleaner:   &morph.Cleaner{Morph: m, Open: int(c.OpenIterations), Close: int(c.CloseIterations)},
		closer:    closer,
		pix:       int(c.MotionPixels),
		gain:      c.StdevGain,
		summary:   int(c.SummaryInterval),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close frees resources used by the morphology and debug windows.
func (g *Gaussian) Close() error {
	err := g.debugging.close()
	if err != nil {
		return err
	}
	if g.closer != nil {
		return g.closer.Close()
	}
	return nil
}

// Detect performs the motion detection on a frame. It returns true
// if motion is detected.
func (g *Gaussian) Detect(f *frame.Frame) (bool, error) {
	r, err := g.Process(f)
	if err != nil {
		return false, err
	}
	return r.Foreground >= g.pix, nil
}

// Process runs one cycle of the background model for f: the model is updated
// with f, f is classified against the updated model, and the raw mask is
// cleaned with an opening followed by a closing.
func (g *Gaussian) Process(f *frame.Frame) (*Result, error) {
	err := g.model.Update(f)
	if err != nil {
		return nil, fmt.Errorf("could not update background model: %w", err)
	}

	d := f.Dims()
	raw, err := frame.NewMask(d.W, d.H)
	if err != nil {
		return nil, fmt.Errorf("could not create mask: %w", err)
	}
	err = g.model.Classify(f, raw)
	if err != nil {
		return nil, fmt.Errorf("could not classify frame: %w", err)
	}

	mask, err := g.cleaner.Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("could not clean mask: %w", err)
	}

	r := &Result{Seq: g.seq, Frame: f, Raw: raw, Mask: mask, Foreground: mask.Count()}
	if g.render || debug {
		r.Mean = g.model.Mean().Image(1)
		r.Stdev = g.model.Stdev().Image(g.gain)
	}
	g.seq++

	// Draw debug information.
	g.debugging.show(r, r.Foreground >= g.pix, fmt.Sprintf("Foreground: %d", r.Foreground), fmt.Sprintf("Pix: %d", g.pix))

	if g.summary > 0 && g.seq%g.summary == 0 {
		g.logSummary()
	}
	if g.handler != nil {
		g.handler(r)
	}
	return r, nil
}

// logSummary logs per-channel statistics of the background model.
func (g *Gaussian) logSummary() {
	s, err := g.model.Summary()
	if err != nil {
		g.log.Warning("could not summarise background model", "error", err.Error())
		return
	}
	g.log.Info("background model summary", "frames", g.seq, "mean", s.Mean, "meanSpread", s.MeanSpread, "stdev", s.Stdev, "maxStdev", s.MaxStdev)
}
