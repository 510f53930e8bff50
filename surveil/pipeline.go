/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go provides functionality for set up of the surveil processing
  pipeline.

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

package surveil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ausocean/utils/ioext"

	"github.com/ausocean/motion/codec/jpeg"
	"github.com/ausocean/motion/device"
	"github.com/ausocean/motion/device/dir"
	"github.com/ausocean/motion/device/file"
	"github.com/ausocean/motion/filter"
	"github.com/ausocean/motion/surveil/config"
)

func (s *Surveil) handleErrors() {
	for {
		err := <-s.err
		if err != nil {
			s.cfg.Logger.Error("async error", "error", err.Error())
		}
	}
}

// reset swaps the current config of a Surveil with the passed
// configuration; checking validity and returning errors if not valid. It then
// sets up the data pipeline accordingly to this configuration.
func (s *Surveil) reset(c config.Config) error {
	s.cfg.Logger.Debug("setting config")
	err := s.setConfig(c)
	if err != nil {
		return fmt.Errorf("could not set config: %w", err)
	}
	s.cfg.Logger.Info("config set")

	s.cfg.Logger.Debug("setting up surveil pipeline")
	err = s.setupPipeline(ioext.MultiWriteCloser)
	if err != nil {
		return fmt.Errorf("could not set up pipeline: %w", err)
	}
	s.cfg.Logger.Info("finished setting pipeline")

	return nil
}

// setConfig takes a config, checks it's validity and then replaces the current
// surveil config.
func (s *Surveil) setConfig(config config.Config) error {
	if config.Logger == nil {
		return errors.New("config has no logger")
	}
	s.cfg.Logger = config.Logger
	s.cfg.Logger.Debug("validating config")
	err := config.Validate()
	if err != nil {
		return errors.New("Config struct is bad: " + err.Error())
	}
	s.cfg.Logger.Info("config validated")
	s.cfg = config
	s.cfg.Logger.SetLevel(s.cfg.LogLevel)
	return nil
}

// setupPipeline constructs the surveil data pipeline. The input, filters and
// senders are created and linked based on the current surveil config.
//
// multiWriter will be used to create an ioext.multiWriteCloser so that
// filters can write to multiple senders.
func (s *Surveil) setupPipeline(multiWriter func(...io.WriteCloser) io.WriteCloser) error {
	var senders []io.WriteCloser
	if s.cfg.OutputPath != "" {
		s.cfg.Logger.Debug("using file output", "path", s.cfg.OutputPath)
		fs := newFileSender(s.cfg.Logger, s.cfg.OutputPath, mjpegExt)
		senders = append(senders, newPoolSender(fs, s.cfg.Logger, newPool(), s.bitrate.Report))
	}
	if len(senders) == 0 {
		s.cfg.Logger.Info("no output defined, frames will be discarded")
		senders = append(senders, discard{})
	}
	s.outputs = multiWriter(senders...)

	var opts []filter.GaussianOption
	var handlers []func(*filter.Result)
	if s.cfg.ArtifactPath != "" {
		s.cfg.Logger.Debug("writing artifacts", "path", s.cfg.ArtifactPath)
		err := os.MkdirAll(s.cfg.ArtifactPath, 0755)
		if err != nil {
			return fmt.Errorf("could not create artifact directory: %w", err)
		}
		s.artifacts = newArtifactSender(s.cfg.Logger, func(name string) io.WriteCloser {
			fs := newFileSender(s.cfg.Logger, filepath.Join(s.cfg.ArtifactPath, name), mjpegExt)
			return newPoolSender(fs, s.cfg.Logger, newPool(), nil)
		})
		opts = append(opts, filter.WithRendering())
		handlers = append(handlers, s.artifacts.handle)
	}
	if s.cfg.ReportPath != "" {
		s.cfg.Logger.Debug("recording report", "path", s.cfg.ReportPath)
		s.report = newReport(s.cfg.Logger, s.cfg.ReportPath)
		handlers = append(handlers, s.report.add)
	}
	if len(handlers) != 0 {
		opts = append(opts, filter.WithResultHandler(func(r *filter.Result) {
			for _, h := range handlers {
				h(r)
			}
		}))
	}

	l := len(s.cfg.Filters)
	s.filters = []filter.Filter{filter.NewNoOp(s.outputs)}
	if l != 0 {
		s.cfg.Logger.Debug("setting up filters", "filters", s.cfg.Filters)
		s.filters = make([]filter.Filter, l)
		dst := s.outputs

		for i := l - 1; i >= 0; i-- {
			switch s.cfg.Filters[i] {
			case config.FilterNoOp:
				s.cfg.Logger.Debug("using NoOp filter")
				s.filters[i] = filter.NewNoOp(dst)
			case config.FilterGaussian:
				s.cfg.Logger.Debug("using gaussian filter")
				g, err := filter.NewGaussian(dst, s.cfg, opts...)
				if err != nil {
					return fmt.Errorf("could not create gaussian filter: %w", err)
				}
				s.filters[i] = g
			case config.FilterVariableFPS:
				s.cfg.Logger.Debug("using variable FPS gaussian filter")
				g, err := filter.NewGaussian(dst, s.cfg, opts...)
				if err != nil {
					return fmt.Errorf("could not create gaussian filter: %w", err)
				}
				s.filters[i] = filter.NewVariableFPS(dst, s.cfg.FileFPS, s.cfg.MinFPS, g)
			default:
				return fmt.Errorf("unknown filter: %v", s.cfg.Filters[i])
			}
			dst = s.filters[i]
		}
		s.cfg.Logger.Info("filters set up")
	}

	switch s.cfg.Input {
	case config.InputFile:
		s.cfg.Logger.Debug("using file input")
		s.input = file.New(s.cfg.Logger)

	case config.InputDir:
		s.cfg.Logger.Debug("using directory input")
		s.input = dir.New(s.cfg.Logger)

	case config.InputManual:
		s.cfg.Logger.Debug("using manual input")
		s.input = device.NewManualInput()

	default:
		return fmt.Errorf("unrecognised input type: %v", s.cfg.Input)
	}
	s.lexTo = jpeg.NewLexer(s.cfg.Logger).Lex

	s.cfg.Logger.Debug("configuring input device")
	err := s.input.Set(s.cfg)
	if err != nil {
		return fmt.Errorf("could not configure input device: %w", err)
	}
	s.cfg.Logger.Info("input device configured")

	return nil
}

// processFrom is run as a routine to read from the started input data source,
// lex and then send individual frames to surveil's filters.
func (s *Surveil) processFrom(delay time.Duration) {
	defer s.wg.Done()
	defer close(s.done)

	// Lex data from the input device until finished or an error is
	// encountered. For a watched directory we remain in this call until
	// input.Stop() is called.
	s.cfg.Logger.Debug("lexing")
	var w io.Writer
	w = s.filters[0]
	if s.probe != nil {
		w = ioext.MultiWriteCloser(s.filters[0], s.probe)
	}

	err := s.lexTo(w, s.input, delay)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		s.cfg.Logger.Info("end of input")
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.cfg.Logger.Info("unexpected EOF from input")
	case errors.Is(err, io.ErrClosedPipe), errors.Is(err, os.ErrClosed):
		s.cfg.Logger.Info("input closed")
	default:
		s.err <- err
	}
	s.cfg.Logger.Info("finished reading input")

	s.cfg.Logger.Debug("stopping input")
	err = s.input.Stop()
	if err != nil {
		s.err <- fmt.Errorf("could not stop input source: %w", err)
	} else {
		s.cfg.Logger.Info("input stopped")
	}
}

// discard is an io.WriteCloser that discards everything written to it.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Close() error                { return nil }
