/*
DESCRIPTION
  A filter that detects motion and discards frames without motion. This
  filter can use different algorithms for motion detection.

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
	"image/draw"
	"io"

	"github.com/disintegration/gift"

	"github.com/ausocean/motion/frame"
	"github.com/ausocean/motion/surveil/config"
)

const (
	defaultMotionDownscaling = 1
	defaultMotionInterval    = 1
	defaultMotionChannels    = frame.RGB
)

// MotionAlgorithm is the interface the motion filter expects for
// motion detection algorithms.
type MotionAlgorithm interface {
	Detect(f *frame.Frame) (bool, error)
	Close() error
}

// Motion is a filter that performs motion detection using a supplied
// motion detection algorithm.
type Motion struct {
	dst       io.WriteCloser  // Destination to which motion containing frames go.
	algorithm MotionAlgorithm // Algorithm to use for motion detection.
	channels  int             // Channels of the frames given to the algorithm.
	scale     int             // The factor that frames will be downscaled by for motion detection.
	sample    uint            // Interval that motion detection is performed at.
	padding   uint            // The amount of frames before and after motion that will be kept.

	t    uint // Frame counter.
	send uint // Amount of frames to send.

	held [][]byte // Most recent frames without motion, oldest first.
}

// NewMotion returns a pointer to a new Motion filter struct.
func NewMotion(dst io.WriteCloser, alg MotionAlgorithm, c config.Config) *Motion {

	// Validate parameters.
	if c.MotionDownscaling <= 0 {
		c.LogInvalidField("MotionDownscaling", defaultMotionDownscaling)
		c.MotionDownscaling = defaultMotionDownscaling
	}
	if c.MotionInterval <= 0 {
		c.LogInvalidField("MotionInterval", defaultMotionInterval)
		c.MotionInterval = defaultMotionInterval
	}
	if c.Channels != frame.Grey && c.Channels != frame.RGB {
		c.LogInvalidField("Channels", defaultMotionChannels)
		c.Channels = defaultMotionChannels
	}

	return &Motion{
		dst:       dst,
		algorithm: alg,
		channels:  int(c.Channels),
		scale:     int(c.MotionDownscaling),
		sample:    c.MotionInterval,
		padding:   c.MotionPadding,
		held:      make([][]byte, 0, c.MotionPadding),
	}
}

// Implements io.Closer.
// Close frees resources used by the algorithm.
func (m *Motion) Close() error {
	return m.algorithm.Close()
}

// Write applies the motion filter to the video stream. Only frames with motion,
// and up to padding frames either side of them, are written to the
// destination, frames without are discarded.
func (m *Motion) Write(f []byte) (int, error) {
	// Filter on an interval.
	if m.t == m.sample/2 {
		img, err := frame.DecodeImage(f)
		if err != nil {
			return 0, err
		}

		// Downsize image to speed up calculations.
		if m.scale > 1 {
			img = m.downscale(img)
		}

		fr, err := frame.FromImage(img, m.channels)
		if err != nil {
			return 0, fmt.Errorf("could not convert image: %w", err)
		}

		motion, err := m.algorithm.Detect(fr)
		if err != nil {
			return 0, fmt.Errorf("could not detect motion: %w", err)
		}
		if motion {
			m.send = m.sample + m.padding
		}
	}
	m.t = (m.t + 1) % m.sample // Increment counter.

	if m.send == 0 {
		m.hold(f)
		return len(f), nil
	}
	m.send--

	// Send the frames held from before the motion first.
	for _, p := range m.held {
		_, err := m.dst.Write(p)
		if err != nil {
			return 0, fmt.Errorf("could not write held frame: %w", err)
		}
	}
	m.held = m.held[:0]

	return m.dst.Write(f)
}

// hold keeps a copy of f, dropping the oldest held frame if padding frames are
// already held.
func (m *Motion) hold(f []byte) {
	if m.padding == 0 {
		return
	}
	if uint(len(m.held)) == m.padding {
		copy(m.held, m.held[1:])
		m.held = m.held[:len(m.held)-1]
	}
	m.held = append(m.held, append([]byte(nil), f...))
}

// downscale returns img reduced by the downscaling factor using nearest
// neighbour resampling.
func (m *Motion) downscale(img image.Image) image.Image {
	b := img.Bounds()
	g := gift.New(gift.Resize(max(b.Dx()/m.scale, 1), max(b.Dy()/m.scale, 1), gift.NearestNeighborResampling))

	var dst draw.Image
	if _, ok := img.(*image.Gray); ok {
		dst = image.NewGray(g.Bounds(b))
	} else {
		dst = image.NewRGBA(g.Bounds(b))
	}
	g.Draw(dst, img)
	return dst
}
