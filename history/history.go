package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/lloyd/snapshot"
)

// CompressionType defines the compression algorithm used for the record stream.
type CompressionType uint8

const (
	// CompressionNone writes records uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 frame compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD compression (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// ParseCompression maps "none", "lz4" and "zstd" to a CompressionType.
func ParseCompression(s string) (CompressionType, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

var magic = [4]byte{'L', 'H', 'S', 'T'}

var (
	// ErrBadMagic is returned when a stream does not start with the history magic.
	ErrBadMagic = errors.New("history: bad magic")

	// ErrUnknownCompression is returned for an unsupported compression id.
	ErrUnknownCompression = errors.New("history: unknown compression")
)

type record struct {
	Iteration  int         `json:"iteration"`
	Assignment []int       `json:"assignment"`
	Centroids  [][]float64 `json:"centroids"`
}

// Write encodes every snapshot of frames to w and returns how many were
// written.
func Write(w io.Writer, frames iter.Seq[snapshot.Snapshot], compression CompressionType) (int, error) {
	header := append(magic[:], byte(compression))
	if _, err := w.Write(header); err != nil {
		return 0, err
	}

	body, err := compressor(w, compression)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(body)
	enc := json.NewEncoder(bw)

	n := 0
	for s := range frames {
		rec := record{
			Iteration:  s.Iteration(),
			Assignment: s.Assignment(),
			Centroids:  s.Centroids(),
		}
		if err := enc.Encode(&rec); err != nil {
			_ = body.Close()
			return n, fmt.Errorf("history: encode snapshot %d: %w", rec.Iteration, err)
		}
		n++
	}

	if err := bw.Flush(); err != nil {
		_ = body.Close()
		return n, err
	}
	return n, body.Close()
}

// Read decodes a stream produced by Write. The returned sequence is lazy: it
// reads from r while being ranged over and can be consumed only once. Any
// error is yielded as the final element.
func Read(r io.Reader) iter.Seq2[snapshot.Snapshot, error] {
	return func(yield func(snapshot.Snapshot, error) bool) {
		body, closeFn, err := open(r)
		if err != nil {
			yield(snapshot.Snapshot{}, err)
			return
		}
		defer closeFn()

		dec := json.NewDecoder(bufio.NewReader(body))
		for {
			var rec record
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(snapshot.Snapshot{}, fmt.Errorf("history: decode: %w", err))
				return
			}
			if !yield(snapshot.New(rec.Iteration, rec.Assignment, rec.Centroids), nil) {
				return
			}
		}
	}
}

// ReadAll decodes every snapshot of a stream produced by Write.
func ReadAll(r io.Reader) ([]snapshot.Snapshot, error) {
	var out []snapshot.Snapshot
	for s, err := range Read(r) {
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(w io.Writer, compression CompressionType) (io.WriteCloser, error) {
	switch compression {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, compression)
	}
}

func open(r io.Reader) (io.Reader, func(), error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, nil, fmt.Errorf("history: read header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, nil, ErrBadMagic
	}

	switch CompressionType(header[4]) {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCompression, header[4])
	}
}
