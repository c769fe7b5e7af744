package kura

import (
	"archive/tar"
	"context"
	"errors"
	"io"
)

// ArchiveDecoder carves the recognizable members out of a game
// archive and yields them as a tar stream.
type ArchiveDecoder interface {
	Entries(context.Context) (io.Reader, error)
	Close() error
}

func EntryNames(ctx context.Context, archiveDecoders ...ArchiveDecoder) ([]string, error) {
	names := []string{}

	for _, archiveDecoder := range archiveDecoders {
		entries, err := archiveDecoder.Entries(ctx)
		if err != nil {
			return nil, err
		}

		tr := tar.NewReader(entries)
		for {
			hdr, err := tr.Next()
			if errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return nil, err
			}

			names = append(names, hdr.Name)
		}
	}

	return names, nil
}
