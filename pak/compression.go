package pak

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/klauspost/compress/zstd"
)

type Compression string

const (
	CompressionNone Compression = ""
	CompressionZlib Compression = "zlib"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var (
	magicGzip = []byte{0x1F, 0x8B}
	magicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// DetectCompression sniffs well-known compression magics. Anything it
// does not recognize is treated as uncompressed.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, magicZstd):
		return CompressionZstd
	case bytes.HasPrefix(data, magicGzip):
		return CompressionGzip
	case len(data) >= 2 && data[0] == 0x78:
		// zlib CMF 0x78 with a valid FLG checksum.
		if (uint16(data[0])<<8|uint16(data[1]))%31 == 0 {
			return CompressionZlib
		}
	}

	return CompressionNone
}

// Decompress inflates data according to its detected compression. Data
// with no recognized magic is returned as-is.
func Decompress(data []byte) ([]byte, error) {
	switch DetectCompression(data) {
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()

		return io.ReadAll(zr)
	case CompressionGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gr.Close()

		return io.ReadAll(gr)
	case CompressionZstd:
		zr, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer zr.Close()

		return zr.DecodeAll(data, nil)
	}

	return data, nil
}
