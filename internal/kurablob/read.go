package kurablob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraerr"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// NewAssetFileReader resolves a file name requested against an asset
// to a blob in the bucket, returning the reader and its content type.
func NewAssetFileReader(ctx context.Context, bucket *blob.Bucket, asset *kura.Asset, file string, pretty bool) (io.ReadCloser, string, error) {
	var (
		ext         = filepath.Ext(file)
		rc          io.ReadCloser
		contentType string
		err         error
	)
	switch {
	case strings.EqualFold(ext, kura.ExtPAK):
		contentType = kura.ContentTypePAK
		rc, err = bucket.NewReader(ctx, PAKKey(asset.ID), nil)
	case strings.EqualFold(file, "report.json"):
		contentType = kura.ContentTypeReport
		if pretty {
			return newPrettyReportReader(ctx, bucket, asset.ID)
		}
		rc, err = bucket.NewReader(ctx, ReportKey(asset.ID), nil)
	case strings.EqualFold(file, "report.txt"):
		return newTextReportReader(ctx, bucket, asset.ID)
	case strings.EqualFold(file, "extracted.tar.gz"), strings.EqualFold(file, "extracted.tgz"):
		contentType = "application/x-gzip"
		rc, err = NewExtractedTarReader(ctx, bucket, asset.ID), nil
	default:
		contentType = "application/octet-stream"
		rc, err = bucket.NewReader(ctx, EntryKey(asset.ID, file), nil)
	}
	if gcerrors.Code(err) == gcerrors.NotFound || rc == nil {
		return nil, "", kuraerr.HTTPStatusCodeError(fmt.Errorf("not found"), http.StatusNotFound)
	} else if err != nil {
		return nil, "", err
	}

	return rc, contentType, nil
}

func readReport(ctx context.Context, bucket *blob.Bucket, id string) (*kura.Report, error) {
	rc, err := bucket.NewReader(ctx, ReportKey(id), nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, kuraerr.HTTPStatusCodeError(fmt.Errorf("not found"), http.StatusNotFound)
	} else if err != nil {
		return nil, err
	}
	defer rc.Close()

	report := &kura.Report{}
	if err = json.NewDecoder(rc).Decode(report); err != nil {
		return nil, err
	}

	return report, nil
}

func newPrettyReportReader(ctx context.Context, bucket *blob.Bucket, id string) (io.ReadCloser, string, error) {
	report, err := readReport(ctx, bucket, id)
	if err != nil {
		return nil, "", err
	}

	var (
		buf = new(bytes.Buffer)
		enc = json.NewEncoder(buf)
	)
	enc.SetIndent("", "  ")

	if err = enc.Encode(report); err != nil {
		return nil, "", err
	}

	return io.NopCloser(buf), kura.ContentTypeReport, nil
}

func newTextReportReader(ctx context.Context, bucket *blob.Bucket, id string) (io.ReadCloser, string, error) {
	report, err := readReport(ctx, bucket, id)
	if err != nil {
		return nil, "", err
	}

	return io.NopCloser(strings.NewReader(report.Text())), "text/plain; charset=utf-8", nil
}
