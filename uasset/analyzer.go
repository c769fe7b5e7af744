// Package uasset inspects serialized asset files. The files' internal
// table layout is not interpreted; analysis reports sizes, digests, a
// hex preview, and the printable strings found in the data.
package uasset

import (
	"context"

	// MD5 and SHA1 identify files here, they are not security material.
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
)

const (
	// PreviewSize is how many leading bytes the report shows as hex.
	PreviewSize = 100

	// MinStringLength is the shortest printable run worth reporting.
	MinStringLength = 4

	// MaxStrings caps how many strings the report carries.
	MaxStrings = 20
)

type Analysis struct {
	Name    string        `json:"name"`
	Size    int64         `json:"size"`
	MD5     string        `json:"md5"`
	SHA1    string        `json:"sha1"`
	Digest  digest.Digest `json:"digest"`
	Preview []byte        `json:"preview,omitempty"`
	Strings []string      `json:"strings,omitempty"`
}

func Analyze(ctx context.Context, name string, r io.Reader) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var (
		md5sum  = md5.Sum(data)  //nolint:gosec
		sha1sum = sha1.Sum(data) //nolint:gosec
	)

	analysis := &Analysis{
		Name:    filepath.Base(name),
		Size:    int64(len(data)),
		MD5:     hex.EncodeToString(md5sum[:]),
		SHA1:    hex.EncodeToString(sha1sum[:]),
		Digest:  digest.FromBytes(data),
		Strings: Strings(data),
	}

	if len(data) > PreviewSize {
		analysis.Preview = data[:PreviewSize]
	}

	return analysis, nil
}

// Strings collects the first MaxStrings runs of printable ASCII of at
// least MinStringLength bytes.
func Strings(data []byte) []string {
	var (
		strs    = []string{}
		current = []byte{}
	)

	flush := func() {
		if len(current) >= MinStringLength && len(strs) < MaxStrings {
			strs = append(strs, string(current))
		}
		current = current[:0]
	}

	for _, b := range data {
		if 32 <= b && b <= 126 {
			current = append(current, b)
		} else {
			flush()
		}

		if len(strs) >= MaxStrings {
			return strs
		}
	}
	flush()

	return strs
}

// Text renders the analysis in the plain report format.
func (a *Analysis) Text() string {
	var sb strings.Builder

	sb.WriteString("UAsset Analysis\n")
	fmt.Fprintf(&sb, "File: %s\n", a.Name)
	fmt.Fprintf(&sb, "Size: %d bytes\n", a.Size)
	fmt.Fprintf(&sb, "MD5: %s\n", a.MD5)
	fmt.Fprintf(&sb, "SHA1: %s\n", a.SHA1)
	fmt.Fprintf(&sb, "Digest: %s\n", a.Digest)

	if len(a.Preview) > 0 {
		hexBytes := make([]string, len(a.Preview))
		for i, b := range a.Preview {
			hexBytes[i] = fmt.Sprintf("%02x", b)
		}
		fmt.Fprintf(&sb, "\nFirst %d bytes (hex):\n%s\n", len(a.Preview), strings.Join(hexBytes, " "))
	}

	if len(a.Strings) > 0 {
		sb.WriteString("\nFound strings:\n")
		for _, s := range a.Strings {
			fmt.Fprintf(&sb, "  %s\n", s)
		}
	}

	return sb.String()
}
