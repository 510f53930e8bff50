/*
NAME
  report.go

DESCRIPTION
  report.go provides a chart of the foreground ratio of processed frames.

AUTHORS
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
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/motion/filter"
)

// Chart dimensions.
const (
	reportWidth  = 14 * vg.Inch
	reportHeight = 6 * vg.Inch
)

// report records the foreground ratio of each result and charts it.
type report struct {
	log  logging.Logger
	path string
	pts  plotter.XYs
}

func newReport(l logging.Logger, path string) *report {
	return &report{log: l, path: path}
}

// add records r. It is suitable for use as a Gaussian result handler.
func (r *report) add(res *filter.Result) {
	r.pts = append(r.pts, plotter.XY{X: float64(res.Seq), Y: res.Ratio()})
}

// write saves the chart of recorded ratios as a PNG at the report path and
// clears the record. Nothing is written if no results were recorded.
func (r *report) write() error {
	if len(r.pts) == 0 {
		r.log.Info("no results to report")
		return nil
	}

	ratios := make([]float64, len(r.pts))
	for i, p := range r.pts {
		ratios[i] = p.Y
	}
	mean, sd := stat.MeanStdDev(ratios, nil)
	r.log.Info("foreground ratio", "frames", len(r.pts), "mean", mean, "stdev", sd)

	p := plot.New()
	p.Title.Text = "Foreground"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Foreground ratio"
	p.Y.Min = 0
	p.Y.Max = 1

	l, err := plotter.NewLine(r.pts)
	if err != nil {
		return fmt.Errorf("could not create line: %w", err)
	}
	l.Width = vg.Points(1)
	p.Add(l, plotter.NewGrid())

	err = p.Save(reportWidth, reportHeight, r.path)
	if err != nil {
		return fmt.Errorf("could not save report: %w", err)
	}
	r.log.Info("report written", "path", r.path)
	r.pts = nil
	return nil
}
