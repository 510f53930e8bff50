/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and Update).

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
	"math"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:            dl,
		Alpha:             defaultAlpha,
		Channels:          defaultChannels,
		CloseIterations:   defaultCloseIterations,
		Filters:           []uint{defaultFilter},
		Input:             defaultInput,
		K:                 defaultK,
		MinFPS:            defaultMinFPS,
		MotionDownscaling: defaultMotionDownscaling,
		MotionInterval:    defaultMotionInterval,
		MotionKernel:      defaultMotionKernel,
		MotionPixels:      defaultMotionPixels,
		OpenIterations:    defaultOpenIterations,
		ResizePolicy:      defaultResizePolicy,
		StdevGain:         defaultStdevGain,
		SummaryInterval:   defaultSummaryInterval,
		Workers:           defaultWorkers,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateBadValues(t *testing.T) {
	dl := &dumbLogger{}

	tests := []struct {
		name string
		in   func(*Config)
		want func(*Config) bool
	}{
		{
			name: "alpha above one",
			in:   func(c *Config) { c.Alpha = 1.5 },
			want: func(c *Config) bool { return c.Alpha == defaultAlpha },
		},
		{
			name: "alpha of one",
			in:   func(c *Config) { c.Alpha = 1 },
			want: func(c *Config) bool { return c.Alpha == defaultAlpha },
		},
		{
			name: "fast alpha",
			in:   func(c *Config) { c.Alpha = 0.5 },
			want: func(c *Config) bool { return c.Alpha == 0.5 },
		},
		{
			name: "negative k",
			in:   func(c *Config) { c.K = -2 },
			want: func(c *Config) bool { return c.K == defaultK },
		},
		{
			name: "alpha NaN",
			in:   func(c *Config) { c.Alpha = math.NaN() },
			want: func(c *Config) bool { return c.Alpha == defaultAlpha },
		},
		{
			name: "k NaN",
			in:   func(c *Config) { c.K = math.NaN() },
			want: func(c *Config) bool { return c.K == defaultK },
		},
		{
			name: "k infinite",
			in:   func(c *Config) { c.K = math.Inf(1) },
			want: func(c *Config) bool { return c.K == defaultK },
		},
		{
			name: "stdev gain infinite",
			in:   func(c *Config) { c.StdevGain = math.Inf(1) },
			want: func(c *Config) bool { return c.StdevGain == defaultStdevGain },
		},
		{
			name: "explicit noop filter",
			in:   func(c *Config) { c.Filters = []uint{FilterNoOp} },
			want: func(c *Config) bool { return len(c.Filters) == 1 && c.Filters[0] == FilterNoOp },
		},
		{
			name: "two channels",
			in:   func(c *Config) { c.Channels = 2 },
			want: func(c *Config) bool { return c.Channels == defaultChannels },
		},
		{
			name: "grey",
			in:   func(c *Config) { c.Channels = 1 },
			want: func(c *Config) bool { return c.Channels == 1 },
		},
		{
			name: "even kernel",
			in:   func(c *Config) { c.MotionKernel = 4 },
			want: func(c *Config) bool { return c.MotionKernel == defaultMotionKernel },
		},
		{
			name: "file fps without file input",
			in: func(c *Config) {
				c.Input = InputDir
				c.FileFPS = 25
			},
			want: func(c *Config) bool { return c.FileFPS == defaultFileFPS },
		},
		{
			name: "file fps with file input",
			in: func(c *Config) {
				c.Input = InputFile
				c.FileFPS = 25
			},
			want: func(c *Config) bool { return c.FileFPS == 25 },
		},
		{
			name: "unknown resize policy",
			in:   func(c *Config) { c.ResizePolicy = 7 },
			want: func(c *Config) bool { return c.ResizePolicy == defaultResizePolicy },
		},
	}

	for _, test := range tests {
		c := Config{Logger: dl}
		test.in(&c)
		if err := c.Validate(); err != nil {
			t.Fatalf("did not expect error for test %s: %v", test.name, err)
		}
		if !test.want(&c) {
			t.Errorf("unexpected config for test %s: %+v", test.name, c)
		}
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"Alpha":             "0.05",
		"ArtifactPath":      "/artifacts",
		"Channels":          "1",
		"CloseIterations":   "3",
		"FileFPS":           "30",
		"Filters":           "Gaussian,NoOp,VariableFPS",
		"Input":             "dir",
		"InputPath":         "/inputpath",
		"K":                 "2.5",
		"logging":           "Debug",
		"Loop":              "true",
		"MinFPS":            "5",
		"MotionDownscaling": "2",
		"MotionInterval":    "4",
		"MotionKernel":      "5",
		"MotionPadding":     "8",
		"MotionPixels":      "100",
		"OpenIterations":    "2",
		"OutputPath":        "/outputpath",
		"ReportPath":        "/report.png",
		"ResizePolicy":      "Fail",
		"StdevGain":         "20",
		"SummaryInterval":   "50",
		"Suppress":          "true",
		"Workers":           "4",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:            dl,
		Alpha:             0.05,
		ArtifactPath:      "/artifacts",
		Channels:          1,
		CloseIterations:   3,
		FileFPS:           30,
		Filters:           []uint{FilterGaussian, FilterNoOp, FilterVariableFPS},
		Input:             InputDir,
		InputPath:         "/inputpath",
		K:                 2.5,
		LogLevel:          logging.Debug,
		Loop:              true,
		MinFPS:            5,
		MotionDownscaling: 2,
		MotionInterval:    4,
		MotionKernel:      5,
		MotionPadding:     8,
		MotionPixels:      100,
		OpenIterations:    2,
		OutputPath:        "/outputpath",
		ReportPath:        "/report.png",
		ResizePolicy:      ResizeFail,
		StdevGain:         20,
		SummaryInterval:   50,
		Suppress:          true,
		Workers:           4,
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestUpdateInvalidFilter(t *testing.T) {
	got := Config{Logger: &dumbLogger{}}
	got.Update(map[string]string{"Filters": "MOG,Gaussian"})
	if want := []uint{FilterGaussian}; !cmp.Equal(got.Filters, want) {
		t.Errorf("unexpected filters\n%s", cmp.Diff(want, got.Filters))
	}
}
