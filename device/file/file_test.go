/*
DESCRIPTION
  file_test.go provides testing for the AVFile device.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package file

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/motion/surveil/config"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.mjpeg")
	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatalf("could not write test file: %v", err)
	}
	return path
}

func TestIsRunning(t *testing.T) {
	path := writeTemp(t, []byte{0xff, 0xd8, 0xff, 0xd9})

	d := New((*logging.TestLogger)(t))

	err := d.Set(config.Config{
		InputPath: path,
	})
	if err != nil {
		t.Fatalf("could not set device: %v", err)
	}

	err = d.Start()
	if err != nil {
		t.Fatalf("could not start device %v", err)
	}

	if !d.IsRunning() {
		t.Error("device isn't running, when it should be")
	}

	err = d.Stop()
	if err != nil {
		t.Error(err.Error())
	}

	if d.IsRunning() {
		t.Error("device is running, when it should not be")
	}
}

func TestSetNoPath(t *testing.T) {
	d := New((*logging.TestLogger)(t))
	if err := d.Set(config.Config{}); err == nil {
		t.Error("expected error for empty input path")
	}
	if err := d.Start(); err == nil {
		t.Error("expected error starting device that has not been set")
	}
}

func TestRead(t *testing.T) {
	want := []byte("0123456789")
	path := writeTemp(t, want)

	tests := []struct {
		name string
		loop bool
		want []byte
	}{
		{name: "once", want: want},
		{name: "loop", loop: true, want: append(append([]byte{}, want...), want[:5]...)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := NewWith((*logging.TestLogger)(t), path, test.loop)
			err := d.Start()
			if err != nil {
				t.Fatalf("could not start device: %v", err)
			}
			defer d.Stop()

			got, err := io.ReadAll(io.LimitReader(d, int64(len(test.want))))
			if err != nil {
				t.Fatalf("could not read device: %v", err)
			}
			if !bytes.Equal(got, test.want) {
				t.Errorf("unexpected data, got: %q, want: %q", got, test.want)
			}
		})
	}
}
