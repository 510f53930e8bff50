/*
DESCRIPTION
  filter_test.go provides testing for the motion filters.

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
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"math/rand"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/motion/background"
	"github.com/ausocean/motion/frame"
	"github.com/ausocean/motion/surveil/config"
)

type dumbWriteCloser struct{}

func (d *dumbWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (d *dumbWriteCloser) Close() error                { return nil }

// recorder keeps a copy of everything written to it.
type recorder struct {
	writes [][]byte
}

func (r *recorder) Write(p []byte) (int, error) {
	r.writes = append(r.writes, append([]byte(nil), p...))
	return len(p), nil
}
func (r *recorder) Close() error { return nil }

func testConfig(t testing.TB) config.Config {
	cfg := config.Config{Logger: logging.New(logging.Debug, &bytes.Buffer{}, true)}
	if tt, ok := t.(*testing.T); ok {
		cfg.Logger = (*logging.TestLogger)(tt)
	}
	err := cfg.Validate()
	if err != nil {
		t.Fatalf("config struct is bad: %v", err)
	}
	return cfg
}

func greyFrame(t *testing.T, w, h int, v uint8) *frame.Frame {
	t.Helper()
	f, err := frame.New(w, h, frame.Grey)
	if err != nil {
		t.Fatalf("could not create frame: %v", err)
	}
	f.Fill(v)
	return f
}

// encode returns img as a maximum quality JPEG.
func encode(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})
	if err != nil {
		t.Fatalf("could not encode image: %v", err)
	}
	return buf.Bytes()
}

// square returns a w by h grey image of value bg with an 8 by 8 square of
// value fg at (8, 8), or no square if fg equals bg.
func square(w, h int, bg, fg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	for y := 8; y < 16; y++ {
		for x := 8; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: fg})
		}
	}
	return img
}

func TestNoOp(t *testing.T) {
	r := &recorder{}
	f := NewNoOp(r)
	for _, p := range [][]byte{{0x01}, {0x02, 0x03}} {
		n, err := f.Write(p)
		if err != nil {
			t.Fatalf("could not write to NoOp: %v", err)
		}
		if n != len(p) {
			t.Errorf("unexpected write length, got: %d, want: %d", n, len(p))
		}
	}
	if len(r.writes) != 2 || !bytes.Equal(r.writes[1], []byte{0x02, 0x03}) {
		t.Errorf("unexpected writes: %v", r.writes)
	}
}

// TestGaussianChangePoint feeds five identical frames followed by a frame
// with a single changed pixel. The pixel is foreground in the raw mask and is
// removed by the opening of the cleanup.
func TestGaussianChangePoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Channels = frame.Grey

	var results []*Result
	g, err := NewGaussianDetector(cfg, WithRendering(), WithResultHandler(func(r *Result) { results = append(results, r) }))
	if err != nil {
		t.Fatalf("could not create detector: %v", err)
	}
	defer g.Close()

	for i := 0; i < 5; i++ {
		motion, err := g.Detect(greyFrame(t, 4, 4, 100))
		if err != nil {
			t.Fatalf("could not process frame %d: %v", i, err)
		}
		if motion {
			t.Errorf("unexpected motion in frame %d", i)
		}
	}

	f := greyFrame(t, 4, 4, 100)
	f.Set(1, 2, 0, 200)
	r, err := g.Process(f)
	if err != nil {
		t.Fatalf("could not process changed frame: %v", err)
	}

	if n := r.Raw.Count(); n != 1 || !r.Raw.Foreground(1, 2) {
		t.Errorf("expected only the changed pixel in raw mask, got %d pixels", n)
	}
	if r.Foreground != 0 || r.Mask.Count() != 0 {
		t.Errorf("expected cleanup to remove single pixel, got %d pixels", r.Foreground)
	}
	if r.Seq != 5 {
		t.Errorf("unexpected sequence number, got: %d, want: 5", r.Seq)
	}
	if len(results) != 6 || results[5] != r {
		t.Errorf("result handler not called for every frame, got %d calls", len(results))
	}
	if r.Mean == nil || r.Stdev == nil {
		t.Fatal("expected rendered model")
	}
	if got := r.Mean.(*image.Gray).GrayAt(0, 0).Y; got != 100 {
		t.Errorf("unexpected rendered mean, got: %d, want: 100", got)
	}

	// sqrt(0.005*100^2) = 7.07 at a gain of 10.
	if got := r.Stdev.(*image.Gray).GrayAt(1, 2).Y; got != 71 {
		t.Errorf("unexpected rendered stdev, got: %d, want: 71", got)
	}
}

func TestGaussianBlob(t *testing.T) {
	cfg := testConfig(t)
	cfg.Channels = frame.Grey
	g, err := NewGaussianDetector(cfg)
	if err != nil {
		t.Fatalf("could not create detector: %v", err)
	}

	for i := 0; i < 5; i++ {
		_, err = g.Process(greyFrame(t, 24, 24, 50))
		if err != nil {
			t.Fatalf("could not process frame %d: %v", i, err)
		}
	}

	f, err := frame.FromImage(square(24, 24, 50, 150), frame.Grey)
	if err != nil {
		t.Fatalf("could not create frame: %v", err)
	}
	r, err := g.Process(f)
	if err != nil {
		t.Fatalf("could not process frame: %v", err)
	}
	if r.Foreground != 64 {
		t.Errorf("unexpected foreground count, got: %d, want: 64", r.Foreground)
	}
	if r.Mean != nil {
		t.Error("did not expect rendered model without rendering")
	}
	if got, want := r.Ratio(), 64.0/(24*24); got != want {
		t.Errorf("unexpected ratio, got: %v, want: %v", got, want)
	}
}

func TestGaussianResize(t *testing.T) {
	tests := []struct {
		name    string
		policy  uint8
		wantErr error
	}{
		{name: "reinit", policy: config.ResizeReinit},
		{name: "fail", policy: config.ResizeFail, wantErr: background.ErrDimensionMismatch},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.ResizePolicy = test.policy
			g, err := NewGaussianDetector(cfg)
			if err != nil {
				t.Fatalf("could not create detector: %v", err)
			}

			_, err = g.Process(greyFrame(t, 8, 8, 10))
			if err != nil {
				t.Fatalf("could not process first frame: %v", err)
			}
			r, err := g.Process(greyFrame(t, 6, 6, 90))
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("unexpected error, got: %v, want: %v", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if r.Foreground != 0 {
				t.Errorf("expected re-seeded model to have no foreground, got %d", r.Foreground)
			}
		})
	}
}

func TestNewGaussianDetectorDefaults(t *testing.T) {
	cfg := config.Config{Logger: (*logging.TestLogger)(t)}
	g, err := NewGaussianDetector(cfg)
	if err != nil {
		t.Fatalf("could not create detector from unvalidated config: %v", err)
	}
	p := g.model.Params()
	if p.Alpha != background.DefaultAlpha || p.K != background.DefaultK {
		t.Errorf("unexpected model parameters: %+v", p)
	}
	if g.cleaner.Open != 1 || g.cleaner.Close != 2 {
		t.Errorf("unexpected cleanup iterations, open: %d, close: %d", g.cleaner.Open, g.cleaner.Close)
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		cfg := config.Config{Logger: (*logging.TestLogger)(t), Alpha: bad, K: bad, StdevGain: bad}
		g, err := NewGaussianDetector(cfg)
		if err != nil {
			t.Fatalf("could not create detector for %v parameters: %v", bad, err)
		}
		p := g.model.Params()
		if p.Alpha != background.DefaultAlpha || p.K != background.DefaultK {
			t.Errorf("unexpected model parameters for %v: %+v", bad, p)
		}
		if g.gain != defaultGaussianStdevGain {
			t.Errorf("unexpected stdev gain for %v: %v", bad, g.gain)
		}
	}

	cfg.MotionKernel = 4
	_, err = NewGaussianDetector(cfg)
	if err == nil {
		t.Error("expected error for even kernel")
	}
}

// TestMotionPadding checks that a motion frame is sent with the frame before
// and after it.
func TestMotionPadding(t *testing.T) {
	cfg := testConfig(t)
	cfg.Channels = frame.Grey
	cfg.MotionPadding = 1

	dst := &recorder{}
	m, err := NewGaussian(dst, cfg)
	if err != nil {
		t.Fatalf("could not create filter: %v", err)
	}
	defer m.Close()

	still := encode(t, square(32, 32, 100, 100))
	moving := encode(t, square(32, 32, 100, 200))
	in := [][]byte{still, still, still, still, still, moving, still, still, still, still}
	for i, p := range in {
		n, err := m.Write(p)
		if err != nil {
			t.Fatalf("could not write frame %d: %v", i, err)
		}
		if n != len(p) {
			t.Errorf("unexpected write length for frame %d, got: %d, want: %d", i, n, len(p))
		}
	}

	want := [][]byte{still, moving, still}
	if len(dst.writes) != len(want) {
		t.Fatalf("unexpected number of frames sent, got: %d, want: %d", len(dst.writes), len(want))
	}
	for i := range want {
		if !bytes.Equal(dst.writes[i], want[i]) {
			t.Errorf("unexpected frame %d sent", i)
		}
	}
}

// fakeAlgorithm records the frames it is given.
type fakeAlgorithm struct {
	dims   []frame.Dims
	motion bool
}

func (f *fakeAlgorithm) Detect(fr *frame.Frame) (bool, error) {
	f.dims = append(f.dims, fr.Dims())
	return f.motion, nil
}

func (f *fakeAlgorithm) Close() error { return nil }

func TestMotionInterval(t *testing.T) {
	cfg := testConfig(t)
	cfg.MotionInterval = 3
	cfg.MotionDownscaling = 2

	alg := &fakeAlgorithm{}
	m := NewMotion(&dumbWriteCloser{}, alg, cfg)
	p := encode(t, square(32, 24, 0, 0))
	for i := 0; i < 9; i++ {
		_, err := m.Write(p)
		if err != nil {
			t.Fatalf("could not write frame %d: %v", i, err)
		}
	}

	if len(alg.dims) != 3 {
		t.Errorf("unexpected number of detections, got: %d, want: 3", len(alg.dims))
	}
	want := frame.Dims{W: 16, H: 12, C: frame.RGB}
	for _, d := range alg.dims {
		if !d.Equal(want) {
			t.Errorf("unexpected downscaled dims, got: %v, want: %v", d, want)
		}
	}
}

func TestMotionIntervalSend(t *testing.T) {
	cfg := testConfig(t)
	cfg.MotionInterval = 2

	dst := &recorder{}
	m := NewMotion(dst, &fakeAlgorithm{motion: true}, cfg)
	p := encode(t, square(16, 16, 0, 0))
	for i := 0; i < 4; i++ {
		_, err := m.Write(p)
		if err != nil {
			t.Fatalf("could not write frame %d: %v", i, err)
		}
	}

	// Detection runs on frames 1 and 3, each sending itself and the rest of
	// its interval. Frame 0 precedes the first detection and is not padded.
	if len(dst.writes) != 3 {
		t.Errorf("unexpected number of frames sent, got: %d, want: 3", len(dst.writes))
	}
}

func TestMotionBadFrame(t *testing.T) {
	m := NewMotion(&dumbWriteCloser{}, &fakeAlgorithm{}, testConfig(t))
	_, err := m.Write([]byte{0xff, 0xd8, 0x00})
	if err == nil {
		t.Error("expected error for undecodable frame")
	}
}

func TestVariableFPS(t *testing.T) {
	dst := &recorder{}
	motion := &recorder{}
	v := NewVariableFPS(dst, 25, 5, &NoOp{dst: motion})
	for i := 0; i < 10; i++ {
		_, err := v.Write([]byte{byte(i)})
		if err != nil {
			t.Fatalf("could not write frame %d: %v", i, err)
		}
	}
	if len(dst.writes) != 2 || len(motion.writes) != 8 {
		t.Errorf("unexpected split, direct: %d, filtered: %d", len(dst.writes), len(motion.writes))
	}
}

func BenchmarkGaussian(b *testing.B) {
	cfg := testConfig(b)
	rng := rand.New(rand.NewSource(1))
	var packets [][]byte
	for i := 0; i < 10; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 320, 240))
		rng.Read(img.Pix)
		packets = append(packets, encode(b, img))
	}

	f, err := NewGaussian(&dumbWriteCloser{}, cfg)
	if err != nil {
		b.Fatalf("could not create filter: %v", err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		for _, x := range packets {
			_, err := f.Write(x)
			if err != nil {
				b.Fatalf("cannot write to gaussian filter: %v", err)
			}
		}
	}

	b.Log("Frames: ", len(packets))
}
