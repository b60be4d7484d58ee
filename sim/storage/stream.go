package storage

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/crowddynamics/crowddynamics/sim"
)

// compressedSuffix marks trajectory streams that are snappy-framed.
const compressedSuffix = ".sz"

// StreamWriter appends trajectory frames to a JSON-lines file, one frame
// per line. Paths ending in ".sz" are written through a snappy framing
// writer. Implements sim.FrameRecorder.
type StreamWriter struct {
	file    *os.File
	snappy  *snappy.Writer
	buf     *bufio.Writer
	encoder *json.Encoder
}

// NewStreamWriter creates (truncating) the stream file at path.
func NewStreamWriter(path string) (*StreamWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating trajectory stream")
	}

	w := &StreamWriter{file: file}
	var sink io.Writer = file
	if strings.HasSuffix(path, compressedSuffix) {
		w.snappy = snappy.NewBufferedWriter(file)
		sink = w.snappy
	} else {
		w.buf = bufio.NewWriter(file)
		sink = w.buf
	}
	w.encoder = json.NewEncoder(sink)
	return w, nil
}

// RecordFrame appends one frame to the stream.
func (w *StreamWriter) RecordFrame(f *sim.Frame) error {
	if err := w.encoder.Encode(f); err != nil {
		return errors.Wrap(err, "encoding frame")
	}
	return nil
}

// Close flushes and closes the stream.
func (w *StreamWriter) Close() error {
	if w.snappy != nil {
		if err := w.snappy.Close(); err != nil {
			w.file.Close()
			return errors.Wrap(err, "closing snappy writer")
		}
	}
	if w.buf != nil {
		if err := w.buf.Flush(); err != nil {
			w.file.Close()
			return errors.Wrap(err, "flushing stream")
		}
	}
	if err := w.file.Close(); err != nil {
		return errors.Wrap(err, "closing stream file")
	}
	return nil
}

// ReadStream loads all frames from a trajectory stream written by
// StreamWriter, decompressing when the path carries the ".sz" suffix.
func ReadStream(path string) ([]*sim.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening trajectory stream")
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, compressedSuffix) {
		reader = snappy.NewReader(file)
	}

	var out []*sim.Frame
	decoder := json.NewDecoder(reader)
	for {
		var f sim.Frame
		if err := decoder.Decode(&f); err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "decoding frame %d", len(out))
		}
		out = append(out, &f)
	}
	return out, nil
}

// MultiRecorder fans frames out to several recorders, stopping at the
// first error.
type MultiRecorder []sim.FrameRecorder

// RecordFrame forwards the frame to every recorder.
func (m MultiRecorder) RecordFrame(f *sim.Frame) error {
	for _, r := range m {
		if err := r.RecordFrame(f); err != nil {
			return err
		}
	}
	return nil
}
