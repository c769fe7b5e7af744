package kurablob

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"path"

	"gocloud.dev/blob"
)

// NewExtractedTarReader streams every blob under the asset's
// extracted/ prefix as a gzipped tarball.
func NewExtractedTarReader(ctx context.Context, bucket *blob.Bucket, id string) io.ReadCloser {
	pr, pw := io.Pipe()

	go func() {
		var (
			gz = gzip.NewWriter(pw)
			tw = tar.NewWriter(gz)
		)

		if err := func() error {
			iter := bucket.List(&blob.ListOptions{
				Prefix: ExtractedPrefix(id),
			})

			for {
				obj, err := iter.Next(ctx)
				if errors.Is(err, io.EOF) {
					break
				} else if err != nil {
					return err
				}

				if obj.IsDir {
					continue
				}

				if err = tw.WriteHeader(&tar.Header{
					Name: path.Base(obj.Key),
					Mode: 0o644,
					Size: obj.Size,
				}); err != nil {
					return err
				}

				rc, err := bucket.NewReader(ctx, obj.Key, nil)
				if err != nil {
					return err
				}

				if _, err = io.Copy(tw, rc); err != nil {
					_ = rc.Close()
					return err
				}

				if err = rc.Close(); err != nil {
					return err
				}
			}

			if err := tw.Close(); err != nil {
				return err
			}

			return gz.Close()
		}(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}

		_ = pw.Close()
	}()

	return pr
}
