/*
NAME
  config.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for surveil.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Enums to define inputs and filters.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	// Inputs.
	InputFile
	InputDir
	InputManual
)

// The different media filters.
const (
	FilterNoOp = iota
	FilterGaussian
	FilterVariableFPS
)

// Resize policies, i.e. what the background model does when a frame arrives
// whose dimensions differ from the model's.
const (
	ResizeReinit = iota
	ResizeFail
)

// Config provides parameters relevant to a surveil instance. A new config must
// be passed to the constructor. Default values for these fields are defined
// in variables.go.
type Config struct {
	// Alpha is the learning rate of the running gaussian average. It must be
	// in (0, 1). Higher values adapt to scene changes more quickly.
	Alpha float64

	// ArtifactPath is a directory to which the mean, standard deviation and
	// foreground mask of every processed frame are written as MJPEG streams.
	// Nothing is written if empty.
	ArtifactPath string

	Channels        uint   // Number of channels frames are reduced to before modelling, 1 for grey or 3 for RGB.
	CloseIterations uint   // Iterations of the closing applied to raw foreground masks.
	FileFPS         uint   // Defines the rate at which frames from a file source are processed.
	Filters         []uint // Defines the methods of filtering to be used in between lexing and output.

	// Input defines the input data source.
	//
	// Valid values are defined by enums:
	// InputFile:
	//		Read an MJPEG stream from a file.
	//		Location must be specified in InputPath field.
	// InputDir:
	//		Watch a directory for JPEG images.
	//		Location must be specified in InputPath field.
	// InputManual:
	//		Frames are provided by calls to Surveil.Write.
	Input uint8

	// InputPath defines the input file or directory location for File and Dir
	// input. This must be defined if either is to be used.
	InputPath string

	// K is the number of standard deviations a sample must be from the mean,
	// in any channel, for the pixel to be considered foreground.
	K float64

	// Logger holds an implementation of the Logger interface.
	// This must be set for surveil to work correctly.
	Logger logging.Logger

	// LogLevel is the surveil logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	Loop              bool // If true will restart reading of input after an io.EOF.
	MinFPS            uint // The reduced framerate of the video when there is no motion.
	MotionDownscaling uint // Downscaling factor of frames used for motion detection.
	MotionInterval    uint // Sets the number of frames that are held before the filter is used (on the nth frame).
	MotionKernel      uint // Size of the square structuring element used for mask cleanup.
	MotionPadding     uint // Number of frames to keep before and after motion detected.
	MotionPixels      uint // Number of foreground pixels needed for a whole frame to be considered as moving.
	OpenIterations    uint // Iterations of the opening applied to raw foreground masks.

	// OutputPath defines the prefix of the output file for frames passed by
	// the filters. A timestamp and .mjpeg extension are appended when the
	// file is created. Frames are discarded if empty.
	OutputPath string

	// ReportPath defines the location of a PNG chart of the foreground ratio
	// of each processed frame, written when surveil stops. No chart is
	// written if empty.
	ReportPath string

	// ResizePolicy defines what happens when frame dimensions change, either
	// ResizeReinit or ResizeFail.
	ResizePolicy uint8

	StdevGain       float64 // Gain applied to the standard deviation when rendering it as an image.
	SummaryInterval uint    // Number of frames between model summary logs.
	Suppress        bool    // Holds logger suppression state.
	Workers         uint    // Number of goroutines used to update and classify row bands.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
