/*
NAME
  surveil.go

DESCRIPTION
  surveil.go provides an API for detecting motion in streams of JPEG images
  with a per pixel gaussian background model.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package surveil provides an API for reading JPEG streams, separating
// moving foreground from a learnt background, and writing the frames that
// contain motion.
package surveil

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ausocean/utils/bitrate"

	"github.com/ausocean/motion/device"
	"github.com/ausocean/motion/filter"
	"github.com/ausocean/motion/surveil/config"
)

// Surveil provides methods to control a surveil session; providing methods
// to start, stop and change the state of an instance using the Config struct.
type Surveil struct {
	// cfg holds the Surveil configuration, including the logger.
	cfg config.Config

	// input will capture frames from which we can read data.
	input device.AVDevice

	// lexTo splits the input stream into frames.
	lexTo func(dest io.Writer, src io.Reader, delay time.Duration) error

	// probe allows us to "probe" frames after being lexed before going off to
	// the filters. This is provided through SetProbe.
	probe io.WriteCloser

	// filters will hold the filter interface that will write to the chosen filter from the lexer.
	filters []filter.Filter

	// outputs will hold the multiWriteCloser that writes frames from the filters.
	outputs io.WriteCloser

	// artifacts writes rendered background models, if configured.
	artifacts *artifactSender

	// report records foreground ratios for charting, if configured.
	report *report

	// running is used to keep track of surveil's running state between methods.
	running bool

	// wg will be used to wait for any processing routines to finish.
	wg sync.WaitGroup

	// err will channel errors from surveil routines to the handle errors routine.
	err chan error

	// done is closed when processing of the input has finished.
	done chan struct{}

	// bitrate is used for bitrate calculations of the outputs.
	bitrate bitrate.Calculator
}

// New returns a pointer to a new Surveil with the desired configuration, and/or
// an error if construction of the new instance was not successful.
func New(c config.Config) (*Surveil, error) {
	s := Surveil{err: make(chan error), done: make(chan struct{})}
	close(s.done)
	err := s.setConfig(c)
	if err != nil {
		return nil, fmt.Errorf("could not set config, failed with error: %w", err)
	}
	go s.handleErrors()
	return &s, nil
}

// Config returns a copy of surveil's current config.
func (s *Surveil) Config() config.Config {
	return s.cfg
}

// Bitrate returns the result of the most recent bitrate check.
func (s *Surveil) Bitrate() int {
	return s.bitrate.Bitrate()
}

// Write writes a frame to surveil when using manual input.
func (s *Surveil) Write(p []byte) (int, error) {
	mi, ok := s.input.(*device.ManualInput)
	if !ok {
		return 0, errors.New("cannot write to anything but ManualInput")
	}
	return mi.Write(p)
}

// Done returns a channel that is closed once the input has been processed
// to its end, or processing failed.
func (s *Surveil) Done() <-chan struct{} {
	return s.done
}

// Start invokes a Surveil to start processing frames from the defined input.
func (s *Surveil) Start() error {
	if s.running {
		s.cfg.Logger.Warning("start called, but surveil already running")
		return nil
	}

	s.cfg.Logger.Debug("resetting surveil")
	err := s.reset(s.cfg)
	if err != nil {
		s.closePipeline()
		return err
	}
	s.cfg.Logger.Info("surveil reset")

	// Calculate delay between frames if the FileFPS != 0. Otherwise use no delay.
	d := time.Duration(0)
	if s.cfg.FileFPS != 0 {
		d = time.Second / time.Duration(s.cfg.FileFPS)
	}

	s.cfg.Logger.Debug("starting input")
	err = s.input.Start()
	if err != nil {
		s.closePipeline()
		return fmt.Errorf("could not start input device: %w", err)
	}
	s.cfg.Logger.Info("input started")

	s.cfg.Logger.Debug("starting input processing routine")
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.processFrom(d)

	s.running = true
	return nil
}

// Stop closes down the pipeline. This stops the input, waits for processing
// to finish, and then closes filters, senders and files.
func (s *Surveil) Stop() {
	if !s.running {
		s.cfg.Logger.Warning("stop called but surveil isn't running")
		return
	}

	s.cfg.Logger.Debug("stopping input")
	err := s.input.Stop()
	if err != nil {
		s.cfg.Logger.Error("could not stop input", "error", err.Error())
	} else {
		s.cfg.Logger.Info("input stopped")
	}

	// Processing must finish before its destinations are closed.
	s.cfg.Logger.Debug("waiting for routines to finish")
	s.wg.Wait()
	s.cfg.Logger.Info("routines finished")

	s.closePipeline()
	s.running = false
}

// closePipeline closes whatever parts of the pipeline have been set up.
func (s *Surveil) closePipeline() {
	for _, f := range s.filters {
		if f == nil {
			continue
		}
		err := f.Close()
		if err != nil {
			s.cfg.Logger.Error("failed to close filter", "error", err.Error())
		}
	}
	s.filters = nil

	if s.outputs != nil {
		s.cfg.Logger.Debug("closing outputs")
		err := s.outputs.Close()
		if err != nil {
			s.cfg.Logger.Error("failed to close outputs", "error", err.Error())
		} else {
			s.cfg.Logger.Info("outputs closed")
		}
		s.outputs = nil
	}

	if s.artifacts != nil {
		err := s.artifacts.Close()
		if err != nil {
			s.cfg.Logger.Error("failed to close artifacts", "error", err.Error())
		}
		s.artifacts = nil
	}

	if s.report != nil {
		err := s.report.write()
		if err != nil {
			s.cfg.Logger.Error("failed to write report", "error", err.Error())
		}
		s.report = nil
	}
}

// Running returns true if surveil has been started and not stopped.
func (s *Surveil) Running() bool {
	return s.running
}

// Update takes a map of variables and their values and edits the current config
// if the variables are recognised as valid parameters. Surveil is stopped if
// running; Start must be called for the new config to take effect.
func (s *Surveil) Update(vars map[string]string) error {
	if s.running {
		s.cfg.Logger.Debug("surveil running; stopping for re-config")
		s.Stop()
		s.cfg.Logger.Info("surveil was running; stopped for re-config")
	}

	s.cfg.Logger.Debug("checking vars", "vars", vars)
	s.cfg.Update(vars)
	s.cfg.Logger.Info("finished reconfig")
	s.cfg.Logger.Debug("config changed", "config", s.cfg)
	return nil
}

// SetProbe sets a destination that receives every lexed frame alongside the
// filters.
func (s *Surveil) SetProbe(p io.WriteCloser) error {
	if s.running {
		return errors.New("cannot set probe when surveil is running")
	}
	s.probe = p
	return nil
}
