// Package pak carves recognizable serialized assets out of .pak
// archives. It does not interpret the archive's own index; members are
// found by scanning for well-known extension markers in the raw data
// and carving a window around each hit.
package pak

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	// MinArchiveSize is the smallest archive worth scanning.
	MinArchiveSize = 100

	// Carve windows reach this far before and after a marker hit.
	carveBefore = 500
	carveAfter  = 1500
)

var (
	markerUAsset = []byte(".uasset")
	markerUExp   = []byte(".uexp")
)

// Entry is a member carved out of an archive.
type Entry struct {
	Name   string `json:"name"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`

	Data []byte `json:"-"`
}

type Decoder struct {
	Name string
	Key  []byte

	data []byte
}

func NewDecoder(name string) *Decoder {
	return &Decoder{Name: name}
}

// NewDecoderWithKey returns a Decoder that decrypts the archive with
// the given AES key before scanning it.
func NewDecoderWithKey(name string, key []byte) *Decoder {
	return &Decoder{Name: name, Key: key}
}

func (d *Decoder) raw() ([]byte, error) {
	if d.data != nil {
		return d.data, nil
	}

	data, err := os.ReadFile(d.Name)
	if err != nil {
		return nil, err
	}

	if len(data) < MinArchiveSize {
		return nil, fmt.Errorf("file too small")
	}

	if len(d.Key) > 0 {
		if data, err = DecryptCBC(d.Key, data); err != nil {
			return nil, err
		}
	}

	d.data = data

	return d.data, nil
}

// Scan carves an Entry around every marker hit in the archive. Windows
// are clamped to the archive bounds and may overlap. Payloads that
// start with a known compression magic are decompressed.
func (d *Decoder) Scan(ctx context.Context) ([]Entry, error) {
	data, err := d.raw()
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, marker := range [][]byte{markerUAsset, markerUExp} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos := 0
		for pos < len(data) {
			i := bytes.Index(data[pos:], marker)
			if i < 0 {
				break
			}
			pos += i

			start := max(0, pos-carveBefore)
			end := min(len(data), pos+carveAfter)

			payload := data[start:end]
			if compression := DetectCompression(payload); compression != CompressionNone {
				if decompressed, err := Decompress(payload); err == nil {
					payload = decompressed
				}
			}

			entries = append(entries, Entry{
				Name:   fmt.Sprintf("file_%d%s", len(entries)+1, string(marker)),
				Offset: int64(start),
				Size:   int64(len(payload)),
				Data:   payload,
			})

			pos++
		}
	}

	return entries, nil
}

// Entries returns the carved members as a tar stream.
func (d *Decoder) Entries(ctx context.Context) (io.Reader, error) {
	entries, err := d.Scan(ctx)
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)

		if err := func() error {
			for _, entry := range entries {
				if err := tw.WriteHeader(&tar.Header{
					Name: entry.Name,
					Mode: 0o644,
					Size: entry.Size,
				}); err != nil {
					return err
				}

				if _, err := tw.Write(entry.Data); err != nil {
					return err
				}
			}

			return tw.Close()
		}(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}

		_ = pw.Close()
	}()

	return pr, nil
}

// Report summarizes the archive and its carved members.
type Report struct {
	Archive string    `json:"archive"`
	Size    int64     `json:"size"`
	Scanned time.Time `json:"scanned"`
	Entries []Entry   `json:"entries"`
}

func (d *Decoder) Report(ctx context.Context) (*Report, error) {
	data, err := d.raw()
	if err != nil {
		return nil, err
	}

	entries, err := d.Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &Report{
		Archive: d.Name,
		Size:    int64(len(data)),
		Scanned: time.Now(),
		Entries: entries,
	}, nil
}

func (d *Decoder) Close() error {
	d.data = nil
	return nil
}
