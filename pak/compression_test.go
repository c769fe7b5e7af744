package pak_test

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/kurahq/kura/pak"
)

func TestDetectCompression(t *testing.T) {
	for _, tc := range []struct {
		name string
		data []byte
		want pak.Compression
	}{
		{"zstd", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}, pak.CompressionZstd},
		{"gzip", []byte{0x1F, 0x8B, 0x08, 0x00}, pak.CompressionGzip},
		{"zlib", []byte{0x78, 0x9C, 0x00}, pak.CompressionZlib},
		{"zlib bad flg", []byte{0x78, 0x00, 0x00}, pak.CompressionNone},
		{"raw", []byte{0x00, 0x01, 0x02, 0x03}, pak.CompressionNone},
		{"empty", nil, pak.CompressionNone},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := pak.DetectCompression(tc.data); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDecompressZlib(t *testing.T) {
	var (
		want = []byte("serialized asset data")
		buf  = new(bytes.Buffer)
	)

	zw := zlib.NewWriter(buf)
	if _, err := zw.Write(want); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := pak.Decompress(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDecompressGzip(t *testing.T) {
	var (
		want = []byte("serialized asset data")
		buf  = new(bytes.Buffer)
	)

	gw := gzip.NewWriter(buf)
	if _, err := gw.Write(want); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := pak.Decompress(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDecompressZstd(t *testing.T) {
	want := []byte("serialized asset data")

	zw, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := pak.Decompress(zw.EncodeAll(want, nil))
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDecompressPassesThroughRawData(t *testing.T) {
	want := []byte{0x01, 0x02, 0x03, 0x04}

	got, err := pak.Decompress(want)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
