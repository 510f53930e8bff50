/*
DESCRIPTION
  parallel.go splits the per-pixel work of the background model into bands of
  rows processed by separate goroutines.

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

import "sync"

// rows calls fn over disjoint bands [y0, y1) covering every row of the model
// and returns once all calls have finished. With fewer than two workers fn is
// called once on the caller's goroutine.
func (m *Model) rows(fn func(y0, y1 int)) {
	h := m.dims.H
	n := m.p.Workers
	if n > h {
		n = h
	}
	if n < 2 {
		fn(0, h)
		return
	}

	band := (h + n - 1) / n
	var wg sync.WaitGroup
	for y0 := 0; y0 < h; y0 += band {
		y1 := min(y0+band, h)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}
