/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

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

package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyAlpha             = "Alpha"
	KeyArtifactPath      = "ArtifactPath"
	KeyChannels          = "Channels"
	KeyCloseIterations   = "CloseIterations"
	KeyFileFPS           = "FileFPS"
	KeyFilters           = "Filters"
	KeyInput             = "Input"
	KeyInputPath         = "InputPath"
	KeyK                 = "K"
	KeyLogging           = "logging"
	KeyLoop              = "Loop"
	KeyMinFPS            = "MinFPS"
	KeyMotionDownscaling = "MotionDownscaling"
	KeyMotionInterval    = "MotionInterval"
	KeyMotionKernel      = "MotionKernel"
	KeyMotionPadding     = "MotionPadding"
	KeyMotionPixels      = "MotionPixels"
	KeyOpenIterations    = "OpenIterations"
	KeyOutputPath        = "OutputPath"
	KeyReportPath        = "ReportPath"
	KeyResizePolicy      = "ResizePolicy"
	KeyStdevGain         = "StdevGain"
	KeySummaryInterval   = "SummaryInterval"
	KeySuppress          = "Suppress"
	KeyWorkers           = "Workers"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	// General surveil defaults.
	defaultInput     = InputFile
	defaultVerbosity = logging.Error
	defaultFileFPS   = 0
	defaultFilter    = FilterGaussian

	// Background model defaults.
	defaultAlpha        = 0.005
	defaultK            = 3.0
	defaultChannels     = 3
	defaultWorkers      = 1
	defaultResizePolicy = ResizeReinit

	// Motion filter parameter defaults.
	defaultMinFPS            = 1
	defaultMotionKernel      = 3
	defaultOpenIterations    = 1
	defaultCloseIterations   = 2
	defaultMotionDownscaling = 1
	defaultMotionInterval    = 1
	defaultMotionPixels      = 1
	defaultStdevGain         = 10.0
	defaultSummaryInterval   = 100
)

// Variables describes the variables that can be used for surveil control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyAlpha,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Alpha = parseFloat(KeyAlpha, v, c) },
		Validate: func(c *Config) {
			if !(c.Alpha > 0 && c.Alpha < 1) {
				c.LogInvalidField(KeyAlpha, defaultAlpha)
				c.Alpha = defaultAlpha
			}
		},
	},
	{
		Name:   KeyArtifactPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.ArtifactPath = v },
	},
	{
		Name:   KeyChannels,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Channels = parseUint(KeyChannels, v, c) },
		Validate: func(c *Config) {
			if c.Channels != 1 && c.Channels != 3 {
				c.LogInvalidField(KeyChannels, defaultChannels)
				c.Channels = defaultChannels
			}
		},
	},
	{
		Name:     KeyCloseIterations,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.CloseIterations = parseUint(KeyCloseIterations, v, c) },
		Validate: func(c *Config) { c.CloseIterations = lessThanOrEqual(KeyCloseIterations, c.CloseIterations, 0, c, defaultCloseIterations) },
	},
	{
		Name:   KeyFileFPS,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FileFPS = parseUint(KeyFileFPS, v, c) },
		Validate: func(c *Config) {
			if c.FileFPS > 0 && c.Input != InputFile {
				c.LogInvalidField(KeyFileFPS, defaultFileFPS)
				c.FileFPS = defaultFileFPS
			}
		},
	},
	{
		Name: KeyFilters,
		Type: "enums:NoOp,Gaussian,VariableFPS",
		Update: func(c *Config, v string) {
			filters := strings.Split(v, ",")
			m := map[string]uint{"noop": FilterNoOp, "gaussian": FilterGaussian, "variablefps": FilterVariableFPS}
			c.Filters = make([]uint, 0, len(filters))
			for _, filter := range filters {
				f, ok := m[strings.ToLower(strings.TrimSpace(filter))]
				if !ok {
					c.Logger.Warning("invalid Filters param", "value", filter)
					continue
				}
				c.Filters = append(c.Filters, f)
			}
		},
		Validate: func(c *Config) {
			if len(c.Filters) == 0 {
				c.LogInvalidField(KeyFilters, "Gaussian")
				c.Filters = []uint{defaultFilter}
			}
		},
	},
	{
		Name: KeyInput,
		Type: "enum:file,dir,manual",
		Update: func(c *Config, v string) {
			c.Input = parseEnum(
				KeyInput,
				v,
				map[string]uint8{
					"file":   InputFile,
					"dir":    InputDir,
					"manual": InputManual,
				},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.Input {
			case InputFile, InputDir, InputManual:
			default:
				c.LogInvalidField(KeyInput, defaultInput)
				c.Input = defaultInput
			}
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name:   KeyK,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.K = parseFloat(KeyK, v, c) },
		Validate: func(c *Config) {
			if !(c.K > 0) || math.IsInf(c.K, 0) {
				c.LogInvalidField(KeyK, defaultK)
				c.K = defaultK
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:     KeyMinFPS,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.MinFPS = parseUint(KeyMinFPS, v, c) },
		Validate: func(c *Config) { c.MinFPS = lessThanOrEqual(KeyMinFPS, c.MinFPS, 0, c, defaultMinFPS) },
	},
	{
		Name:     KeyMotionDownscaling,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.MotionDownscaling = parseUint(KeyMotionDownscaling, v, c) },
		Validate: func(c *Config) { c.MotionDownscaling = lessThanOrEqual(KeyMotionDownscaling, c.MotionDownscaling, 0, c, defaultMotionDownscaling) },
	},
	{
		Name:     KeyMotionInterval,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.MotionInterval = parseUint(KeyMotionInterval, v, c) },
		Validate: func(c *Config) { c.MotionInterval = lessThanOrEqual(KeyMotionInterval, c.MotionInterval, 0, c, defaultMotionInterval) },
	},
	{
		Name:   KeyMotionKernel,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionKernel = parseUint(KeyMotionKernel, v, c) },
		Validate: func(c *Config) {
			if c.MotionKernel < 3 || c.MotionKernel%2 == 0 {
				c.LogInvalidField(KeyMotionKernel, defaultMotionKernel)
				c.MotionKernel = defaultMotionKernel
			}
		},
	},
	{
		Name:   KeyMotionPadding,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionPadding = parseUint(KeyMotionPadding, v, c) },
	},
	{
		Name:     KeyMotionPixels,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.MotionPixels = parseUint(KeyMotionPixels, v, c) },
		Validate: func(c *Config) { c.MotionPixels = lessThanOrEqual(KeyMotionPixels, c.MotionPixels, 0, c, defaultMotionPixels) },
	},
	{
		Name:     KeyOpenIterations,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.OpenIterations = parseUint(KeyOpenIterations, v, c) },
		Validate: func(c *Config) { c.OpenIterations = lessThanOrEqual(KeyOpenIterations, c.OpenIterations, 0, c, defaultOpenIterations) },
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name:   KeyReportPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.ReportPath = v },
	},
	{
		Name: KeyResizePolicy,
		Type: "enum:reinit,fail",
		Update: func(c *Config, v string) {
			c.ResizePolicy = parseEnum(
				KeyResizePolicy,
				v,
				map[string]uint8{
					"reinit": ResizeReinit,
					"fail":   ResizeFail,
				},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.ResizePolicy {
			case ResizeReinit, ResizeFail:
			default:
				c.LogInvalidField(KeyResizePolicy, defaultResizePolicy)
				c.ResizePolicy = defaultResizePolicy
			}
		},
	},
	{
		Name:   KeyStdevGain,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.StdevGain = parseFloat(KeyStdevGain, v, c) },
		Validate: func(c *Config) {
			if !(c.StdevGain > 0) || math.IsInf(c.StdevGain, 0) {
				c.LogInvalidField(KeyStdevGain, defaultStdevGain)
				c.StdevGain = defaultStdevGain
			}
		},
	},
	{
		Name:     KeySummaryInterval,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.SummaryInterval = parseUint(KeySummaryInterval, v, c) },
		Validate: func(c *Config) { c.SummaryInterval = lessThanOrEqual(KeySummaryInterval, c.SummaryInterval, 0, c, defaultSummaryInterval) },
	},
	{
		Name: KeySuppress,
		Type: typeBool,
		Update: func(c *Config, v string) {
			c.Suppress = parseBool(KeySuppress, v, c)
			if l, ok := c.Logger.(*logging.JSONLogger); ok {
				l.SetSuppress(c.Suppress)
			}
		},
	},
	{
		Name:     KeyWorkers,
		Type:     typeUint,
		Update:   func(c *Config, v string) { c.Workers = parseUint(KeyWorkers, v, c) },
		Validate: func(c *Config) { c.Workers = lessThanOrEqual(KeyWorkers, c.Workers, 0, c, defaultWorkers) },
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected float for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
