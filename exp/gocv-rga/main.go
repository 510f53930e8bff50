//go:build withcv
// +build withcv

/*
DESCRIPTION
  gocv-rga detects motion in frames from a camera with the running gaussian
  average background model, showing the camera image with bounding boxes of
  moving regions alongside the model and foreground mask.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"

	"github.com/ausocean/motion/filter"
	"github.com/ausocean/motion/frame"
	"github.com/ausocean/motion/surveil/config"
	"github.com/ausocean/utils/logging"
)

func main() {
	device := flag.String("device", "0", "camera ID or video file")
	minArea := flag.Float64("area", 100, "minimum area of a moving region in pixels")
	alpha := flag.String("alpha", "0.01", "learning rate of the background model")
	k := flag.String("k", "3", "foreground threshold in standard deviations")
	flag.Parse()

	log := logging.New(logging.Info, os.Stderr, true)
	cfg := config.Config{Logger: log}
	cfg.Update(map[string]string{config.KeyAlpha: *alpha, config.KeyK: *k})
	cfg.Validate()

	g, err := filter.NewGaussianDetector(cfg, filter.WithRendering())
	if err != nil {
		log.Fatal("could not create detector", "error", err.Error())
	}
	defer g.Close()

	cam, err := gocv.OpenVideoCapture(*device)
	if err != nil {
		log.Fatal("could not open video capture device", "device", *device, "error", err.Error())
	}
	defer cam.Close()

	windows := map[string]*gocv.Window{}
	for _, name := range []string{"Motion", "Mean", "Standard Deviation", "Foreground"} {
		w := gocv.NewWindow(name)
		defer w.Close()
		windows[name] = w
	}

	img := gocv.NewMat()
	defer img.Close()

	fmt.Printf("Start reading device: %v\n", *device)
	for {
		if ok := cam.Read(&img); !ok {
			fmt.Printf("Device closed: %v\n", *device)
			return
		}
		if img.Empty() {
			continue
		}

		src, err := img.ToImage()
		if err != nil {
			log.Error("could not convert mat", "error", err.Error())
			continue
		}
		f, err := frame.FromImage(src, int(cfg.Channels))
		if err != nil {
			log.Error("could not convert image", "error", err.Error())
			continue
		}
		r, err := g.Process(f)
		if err != nil {
			log.Error("could not process frame", "error", err.Error())
			continue
		}

		mask, err := gocv.ImageGrayToMatGray(r.Mask.Image())
		if err != nil {
			log.Error("could not convert mask", "error", err.Error())
			continue
		}

		status := "READY"
		statusColor := color.RGBA{0, 255, 0, 0}
		contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
		for i := 0; i < contours.Size(); i++ {
			if gocv.ContourArea(contours.At(i)) < *minArea {
				continue
			}
			status = "MOTION DETECTED"
			statusColor = color.RGBA{255, 0, 0, 0}
			gocv.Rectangle(&img, gocv.BoundingRect(contours.At(i)), color.RGBA{0, 0, 255, 0}, 1)
		}
		contours.Close()
		text := fmt.Sprintf("%s %.1f%%", status, 100*r.Ratio())
		gocv.PutText(&img, text, image.Pt(10, 20), gocv.FontHersheyPlain, 1.2, statusColor, 2)

		windows["Motion"].IMShow(img)
		show(windows["Mean"], r.Mean)
		show(windows["Standard Deviation"], r.Stdev)
		windows["Foreground"].IMShow(mask)
		mask.Close()

		if windows["Motion"].WaitKey(1) == 27 {
			return
		}
	}
}

// show displays img in w.
func show(w *gocv.Window, img image.Image) {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return
	}
	defer m.Close()
	w.IMShow(m)
}
