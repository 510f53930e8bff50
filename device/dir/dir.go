/*
DESCRIPTION
  dir.go provides an implementation of the AVDevice interface for a directory
  into which JPEG images are placed, e.g. by a camera uploading stills.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dir provides an implementation of AVDevice for a watched directory
// of JPEG images.
package dir

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ausocean/utils/logging"
	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/motion/device"
	"github.com/ausocean/motion/surveil/config"
)

// Dir is an implementation of the AVDevice interface for a directory of JPEG
// images. Images already in the directory are read first in name order, then
// images created in the directory while running are read as they appear.
// Images written in place are read once they end with an end of image
// marker.
type Dir struct {
	log       logging.Logger
	path      string
	set       bool
	isRunning bool
	mu        sync.Mutex

	watcher *fsnotify.Watcher
	reader  *io.PipeReader
	writer  *io.PipeWriter
	sent    map[string]bool // Images already read.
	wg      sync.WaitGroup
}

// New returns a new Dir.
func New(l logging.Logger) *Dir { return &Dir{log: l} }

// NewWith returns a new Dir watching path i.e. the Set method does not need
// to be called.
func NewWith(l logging.Logger, path string) *Dir {
	return &Dir{log: l, path: path, set: true}
}

// Name returns the name of the device.
func (d *Dir) Name() string { return "Dir" }

// Set sets the watched directory from the InputPath field of c.
func (d *Dir) Set(c config.Config) error {
	var errs device.MultiError
	if c.InputPath == "" {
		errs = append(errs, errors.New("no input path for dir device"))
	} else if fi, err := os.Stat(c.InputPath); err != nil {
		errs = append(errs, fmt.Errorf("could not stat input path: %w", err))
	} else if !fi.IsDir() {
		errs = append(errs, fmt.Errorf("input path %s is not a directory", c.InputPath))
	}
	if errs != nil {
		return errs
	}
	d.path = c.InputPath
	d.set = true
	return nil
}

// Start begins watching the directory.
func (d *Dir) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.set {
		return errors.New("Dir has not been set with config")
	}
	if d.isRunning {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}

	// Watch before listing so no image is missed between the two.
	err = w.Add(d.path)
	if err != nil {
		w.Close()
		return fmt.Errorf("could not watch %s: %w", d.path, err)
	}
	entries, err := os.ReadDir(d.path)
	if err != nil {
		w.Close()
		return fmt.Errorf("could not list %s: %w", d.path, err)
	}
	var existing []string
	for _, e := range entries {
		if !e.IsDir() && isJPEG(e.Name()) {
			existing = append(existing, filepath.Join(d.path, e.Name()))
		}
	}
	d.log.Info("watching directory", "path", d.path, "existing", len(existing))

	d.watcher = w
	d.reader, d.writer = io.Pipe()
	d.sent = make(map[string]bool)
	d.isRunning = true
	d.wg.Add(1)
	go d.watch(existing)
	return nil
}

// Stop stops watching the directory such that further reads will fail.
func (d *Dir) Stop() error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.reader.Close()
	err := d.watcher.Close()
	d.mu.Unlock()

	d.wg.Wait()
	if err != nil {
		return fmt.Errorf("could not close watcher: %w", err)
	}
	return nil
}

// Read implements io.Reader. The images are read as one stream, i.e. MJPEG.
func (d *Dir) Read(p []byte) (int, error) {
	d.mu.Lock()
	r := d.reader
	d.mu.Unlock()
	if r == nil {
		return 0, errors.New("Dir not started")
	}
	return r.Read(p)
}

// IsRunning is used to determine if the Dir device is running.
func (d *Dir) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRunning
}

// watch sends the existing images and then any created images until the
// watcher is closed or the pipe is closed by Stop.
func (d *Dir) watch(existing []string) {
	defer d.wg.Done()
	defer d.writer.Close()

	for _, name := range existing {
		if !d.send(name) {
			return
		}
	}

	for {
		select {
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) || !isJPEG(ev.Name) {
				continue
			}
			if !d.send(ev.Name) {
				return
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.log.Warning("directory watcher error", "error", err.Error())
		}
	}
}

// send writes the contents of the named image to the pipe. Incomplete images
// are skipped until a later write event. It returns false if the pipe has
// been closed.
func (d *Dir) send(name string) bool {
	if d.sent[name] {
		return true
	}

	p, err := os.ReadFile(name)
	if err != nil {
		d.log.Warning("could not read image", "file", name, "error", err.Error())
		return true
	}
	if !complete(p) {
		d.log.Debug("skipping incomplete image", "file", name, "size", len(p))
		return true
	}
	d.sent[name] = true

	_, err = d.writer.Write(p)
	if err != nil {
		d.log.Debug("image pipe closed", "error", err.Error())
		return false
	}
	d.log.Debug("sent image", "file", name, "size", len(p))
	return true
}

var (
	soi = []byte{0xff, 0xd8}
	eoi = []byte{0xff, 0xd9}
)

// complete returns true if p starts with a start of image marker and ends
// with an end of image marker.
func complete(p []byte) bool {
	return len(p) >= 4 && bytes.HasPrefix(p, soi) && bytes.HasSuffix(p, eoi)
}

func isJPEG(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}
