/*
DESCRIPTION
  stats.go provides a summary of the background model statistics for
  logging and monitoring.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package background

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds per-channel averages over the whole model.
type Summary struct {
	Mean       []float64 // Average of the mean grid.
	MeanSpread []float64 // Standard deviation of the mean grid across pixels.
	Stdev      []float64 // Average of the standard deviation grid.
	MaxStdev   []float64 // Largest standard deviation.
}

// Summary returns per-channel statistics of the model state.
func (m *Model) Summary() (Summary, error) {
	if !m.Initialised() {
		return Summary{}, ErrUninitialised
	}

	var s Summary
	for c := 0; c < m.dims.C; c++ {
		means := m.mean.Channel(c)
		sds := m.stdev.Channel(c)
		mu, spread := stat.MeanStdDev(means, nil)
		s.Mean = append(s.Mean, mu)
		s.MeanSpread = append(s.MeanSpread, spread)
		s.Stdev = append(s.Stdev, stat.Mean(sds, nil))
		s.MaxStdev = append(s.MaxStdev, floats.Max(sds))
	}
	return s, nil
}
