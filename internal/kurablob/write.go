package kurablob

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraerr"
	"github.com/kurahq/kura/internal/kuraregexp"
	"github.com/kurahq/kura/internal/kurasql"
	"gocloud.dev/blob"
)

// WriteUpload records the asset and canonicalizes the upload body into
// a gzipped tarball in the bucket, whatever Content-Type it arrived as.
func WriteUpload(ctx context.Context, bucket *blob.Bucket, db *sql.DB, mediaType, boundary string, asset *kura.Asset, body io.Reader) error {
	var (
		isMultipart = strings.EqualFold(mediaType, "multipart/form-data")
		isGzip      = strings.EqualFold(mediaType, "application/x-gzip")
		isTar       = strings.EqualFold(mediaType, "application/x-tar")
		isRaw       = strings.EqualFold(mediaType, "application/octet-stream")
	)

	if !isMultipart && !isGzip && !isTar && !isRaw {
		return kuraerr.HTTPStatusCodeError(
			fmt.Errorf("unsupported Content-Type %s", mediaType),
			http.StatusUnsupportedMediaType,
		)
	}

	if isMultipart && boundary == "" {
		return kuraerr.HTTPStatusCodeError(
			fmt.Errorf("no boundary"),
			http.StatusBadRequest,
		)
	}

	if err := kurasql.InsertAsset(ctx, db, asset); err != nil {
		return err
	}

	bw, err := bucket.NewWriter(ctx, UploadKey(asset.ID), nil)
	if err != nil {
		return err
	}

	bd := body
	switch {
	case isMultipart:
		bd = multipartToTar(multipart.NewReader(bd, boundary))
	case isRaw:
		bd = fileToTar(body, "archive"+kura.ExtPAK)
	}

	if isGzip {
		if _, err = io.Copy(bw, bd); err != nil {
			_ = bw.Close()
			return err
		}
	} else {
		gz := gzip.NewWriter(bw)

		if _, err = io.Copy(gz, bd); err != nil {
			_ = gz.Close()
			_ = bw.Close()
			return err
		}

		if err = gz.Close(); err != nil {
			_ = bw.Close()
			return err
		}
	}

	// Committing the blob can fail; the uploader has to hear about it.
	return bw.Close()
}

// WriteReport marshals the unpack report into the bucket.
func WriteReport(ctx context.Context, bucket *blob.Bucket, id string, report *kura.Report) error {
	w, err := bucket.NewWriter(ctx, ReportKey(id), &blob.WriterOptions{
		ContentType: kura.ContentTypeReport,
	})
	if err != nil {
		return err
	}

	if err = json.NewEncoder(w).Encode(report); err != nil {
		return err
	}

	return w.Close()
}

func fileToTar(r io.Reader, name string) io.Reader {
	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		defer tw.Close()

		if err := func() error {
			// Need to get the size of the file up front.
			b, err := io.ReadAll(r)
			if err != nil {
				return err
			}

			if err := tw.WriteHeader(&tar.Header{
				Name: name,
				Mode: 0o777,
				Size: int64(len(b)),
			}); err != nil {
				return err
			}

			if _, err := tw.Write(b); err != nil {
				return err
			}

			return nil
		}(); err != nil {
			pw.CloseWithError(err)
		} else {
			pw.Close()
		}
	}()

	return pr
}

// multipartToTar converts a *multipart.Reader to a tar stream keeping
// only archive members.
func multipartToTar(mr *multipart.Reader) io.Reader {
	pr, pw := io.Pipe()

	go func() {
		defer pw.Close()
		tw := tar.NewWriter(pw)
		defer tw.Close()

		if err := func() error {
			for {
				p, err := mr.NextPart()
				if errors.Is(err, io.EOF) {
					break
				} else if err != nil {
					return err
				}
				defer p.Close()

				if p.FormName() == "file" && kuraregexp.IsArchive(path.Base(p.FileName())) {
					// Need to get the size of the part.
					b, err := io.ReadAll(p)
					if err != nil {
						return err
					}

					if err := tw.WriteHeader(&tar.Header{
						Name: p.FileName(),
						Mode: 0o777,
						Size: int64(len(b)),
					}); err != nil {
						return err
					}

					if _, err := tw.Write(b); err != nil {
						return err
					}
				}
			}

			return nil
		}(); err != nil {
			pw.CloseWithError(err)
		} else {
			pw.Close()
		}
	}()

	return pr
}
