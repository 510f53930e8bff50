/*
NAME
  senders.go

DESCRIPTION
  senders.go provides the destinations that surveil writes frames and
  rendered model images to.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>
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
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/pool"

	"github.com/ausocean/motion/device"
	"github.com/ausocean/motion/filter"
)

// Pool buffer parameters for senders.
const (
	poolReadTimeout  = 1 * time.Second
	poolDrainTimeout = 10 * time.Millisecond
	poolWriteTimeout = 5 * time.Second
	poolElements     = 16
	poolElementSize  = 512 << 10 // 512KiB.
	poolMaxAlloc     = 8 << 20   // 8MiB.
)

// Disk space that must remain free for a fileSender write to go ahead.
const spaceBuffer = 50000000 // 50MB.

// Extension given to files of concatenated JPEGs.
const mjpegExt = ".mjpeg"

// fileSender writes to a file created lazily on the first write. The file is
// named by the sender's path followed by a timestamp and extension.
type fileSender struct {
	file *os.File
	path string
	ext  string
	log  logging.Logger
}

func newFileSender(l logging.Logger, path, ext string) *fileSender {
	return &fileSender{path: path, ext: ext, log: l}
}

// Write implements io.Writer.
func (s *fileSender) Write(d []byte) (int, error) {
	s.log.Debug("checking disk space")
	var stat syscall.Statfs_t
	if err := syscall.Statfs(filepath.Dir(s.path), &stat); err != nil {
		return 0, fmt.Errorf("could not read system disk space, abandoning write: %w", err)
	}
	availableSpace := stat.Bavail * uint64(stat.Bsize)
	if availableSpace < spaceBuffer {
		return 0, fmt.Errorf("reached limit of disk space with a buffer of %v bytes, abandoning write", spaceBuffer)
	}

	if s.file == nil {
		fileName := s.path + "_" + time.Now().Format("2006-01-02_15-04-05") + s.ext
		s.log.Debug("creating new output file", "fileName", fileName)
		f, err := os.Create(fileName)
		if err != nil {
			return 0, fmt.Errorf("could not create output file: %w", err)
		}
		s.file = f
	}

	s.log.Debug("writing to output file", "bytes", len(d))
	return s.file.Write(d)
}

// Close implements io.Closer.
func (s *fileSender) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// poolSender decouples writers from a slow destination. Writes are copied to
// a pool buffer and an output routine forwards them to dst.
type poolSender struct {
	dst    io.WriteCloser
	pool   *pool.Buffer
	done   chan struct{}
	log    logging.Logger
	report func(sent int)
	wg     sync.WaitGroup
}

// newPoolSender returns a poolSender forwarding to dst. report, if not nil, is
// called with the size of every successful write to dst.
func newPoolSender(dst io.WriteCloser, log logging.Logger, rb *pool.Buffer, report func(sent int)) *poolSender {
	s := &poolSender{
		dst:    dst,
		pool:   rb,
		done:   make(chan struct{}),
		log:    log,
		report: report,
	}
	pool.MaxAlloc(poolMaxAlloc)
	s.wg.Add(1)
	go s.output()
	return s
}

// newPool returns a pool buffer suitable for a poolSender.
func newPool() *pool.Buffer {
	return pool.NewBuffer(poolElements, poolElementSize, poolWriteTimeout)
}

// output forwards chunks from the pool to dst until Close is called, and then
// forwards whatever remains.
func (s *poolSender) output() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			s.drain()
			s.log.Info("terminating sender output routine")
			return
		default:
			chunk, err := s.pool.Next(poolReadTimeout)
			switch err {
			case nil:
			case io.EOF:
				continue
			case pool.ErrTimeout:
				s.log.Debug("poolSender: pool buffer read timeout")
				continue
			default:
				s.log.Error("unexpected error", "error", err.Error())
				continue
			}
			s.send(chunk)
		}
	}
}

func (s *poolSender) drain() {
	for {
		chunk, err := s.pool.Next(poolDrainTimeout)
		if err != nil {
			return
		}
		s.send(chunk)
	}
}

func (s *poolSender) send(chunk *pool.Chunk) {
	defer chunk.Close()
	n, err := s.dst.Write(chunk.Bytes())
	if err != nil {
		s.log.Warning("failed write", "error", err)
		return
	}
	if s.report != nil {
		s.report(n)
	}
}

// Write implements io.Writer. Data that cannot be buffered is dropped with a
// warning.
func (s *poolSender) Write(d []byte) (int, error) {
	n, err := s.pool.Write(d)
	if err != nil {
		s.log.Warning("pool buffer write error", "error", err.Error(), "n", n, "writeSize", len(d))
		return len(d), nil
	}
	s.pool.Flush()
	return len(d), nil
}

// Close stops the output routine once buffered data has been sent, and then
// closes dst.
func (s *poolSender) Close() error {
	s.log.Debug("closing sender output routine")
	close(s.done)
	s.wg.Wait()
	s.log.Info("sender output routine closed")
	return s.dst.Close()
}

// JPEG quality of rendered artifacts.
const artifactQuality = 90

// artifactSender writes the rendered mean, standard deviation and cleaned
// foreground mask of each result to their own MJPEG stream.
type artifactSender struct {
	log   logging.Logger
	mean  io.WriteCloser
	stdev io.WriteCloser
	mask  io.WriteCloser
	buf   bytes.Buffer
}

// newArtifactSender returns an artifactSender whose streams are created by
// dst, which is called with the name of each stream.
func newArtifactSender(l logging.Logger, dst func(name string) io.WriteCloser) *artifactSender {
	return &artifactSender{
		log:   l,
		mean:  dst("mean"),
		stdev: dst("stdev"),
		mask:  dst("mask"),
	}
}

// handle encodes the images of r. It is suitable for use as a Gaussian
// result handler with rendering enabled.
func (s *artifactSender) handle(r *filter.Result) {
	for _, a := range []struct {
		name string
		img  image.Image
		dst  io.Writer
	}{
		{"mean", r.Mean, s.mean},
		{"stdev", r.Stdev, s.stdev},
		{"mask", r.Mask.Image(), s.mask},
	} {
		if a.img == nil {
			continue
		}
		err := s.write(a.dst, a.img)
		if err != nil {
			s.log.Warning("could not write artifact", "artifact", a.name, "seq", r.Seq, "error", err)
		}
	}
}

func (s *artifactSender) write(dst io.Writer, img image.Image) error {
	s.buf.Reset()
	err := jpeg.Encode(&s.buf, img, &jpeg.Options{Quality: artifactQuality})
	if err != nil {
		return fmt.Errorf("could not encode image: %w", err)
	}
	_, err = dst.Write(s.buf.Bytes())
	return err
}

// Close closes each of the artifact streams.
func (s *artifactSender) Close() error {
	var errs device.MultiError
	for _, c := range []io.Closer{s.mean, s.stdev, s.mask} {
		err := c.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) != 0 {
		return fmt.Errorf("could not close artifact streams: %w", errs)
	}
	return nil
}
