//go:build debug && withcv
// +build debug,withcv

/*
DESCRIPTION
  Displays debug information for the motion filters.

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
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// debug is true if debug windows are shown.
const debug = true

// debugWindows is used for displaying debug information for the motion filters.
type debugWindows struct {
	windows []*gocv.Window
}

// close frees resources used by gocv.
func (d *debugWindows) close() error {
	for _, window := range d.windows {
		err := window.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// newWindows creates debugging windows for the motion filter.
func newWindows(name string) debugWindows {
	return debugWindows{
		windows: []*gocv.Window{
			gocv.NewWindow(name + ": Video"),
			gocv.NewWindow(name + ": Mean"),
			gocv.NewWindow(name + ": Standard Deviation"),
			gocv.NewWindow(name + ": Foreground"),
		},
	}
}

// show displays the frame, the background model and the cleaned foreground
// mask of a result.
func (d *debugWindows) show(r *Result, motion bool, text ...string) {
	var drkRed = color.RGBA{191, 0, 0, 0}

	frm := r.Frame.Dims()
	img := image.NewRGBA(image.Rect(0, 0, frm.W, frm.H))
	for y := 0; y < frm.H; y++ {
		for x := 0; x < frm.W; x++ {
			var c [3]uint8
			for ch := range c {
				c[ch] = r.Frame.At(x, y, ch%frm.C)
			}
			img.SetRGBA(x, y, color.RGBA{c[0], c[1], c[2], 0xff})
		}
	}

	mats := make([]gocv.Mat, 0, len(d.windows))
	for _, src := range []image.Image{img, r.Mean, r.Stdev, r.Mask.Image()} {
		mat, err := gocv.ImageToMatRGB(src)
		if err != nil {
			panic("cannot show frame in window: " + err.Error())
		}
		defer mat.Close()
		mats = append(mats, mat)
	}

	// Draw debugging text.
	if motion {
		text = append(text, "Motion Detected")
	}
	for i, str := range text {
		gocv.PutText(&mats[0], str, image.Pt(32, 32*(i+1)), gocv.FontHersheyPlain, 2.0, drkRed, 2)
	}

	// Display windows.
	for i, w := range d.windows {
		w.IMShow(mats[i])
	}
	d.windows[0].WaitKey(1)
}
