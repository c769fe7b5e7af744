package kurapubsub

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kurablob"
	"github.com/kurahq/kura/internal/kuraerr"
	"github.com/kurahq/kura/internal/kurasql"
	"github.com/kurahq/kura/pak"
	"github.com/kurahq/kura/uasset"
	"github.com/opencontainers/go-digest"
	"gocloud.dev/blob"
	"gocloud.dev/pubsub"
	"golang.org/x/sync/errgroup"
)

// Unpack walks the members of an uploaded tarball, carving archives
// and analyzing serialized assets into the bucket, and fills in the
// asset row accordingly.
func Unpack(ctx context.Context, bucket *blob.Bucket, tr *tar.Reader, asset *kura.Asset, key []byte) (*kura.Report, error) {
	var (
		report = &kura.Report{}
		pakD   *pak.Decoder
	)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		switch {
		case err != nil:
			return nil, err
		case strings.HasPrefix(hdr.Name, "._"):
			continue
		}

		var (
			base = filepath.Base(hdr.Name)
			ext  = filepath.Ext(base)
		)
		switch {
		case strings.EqualFold(ext, kura.ExtPAK):
			if pakD != nil {
				return nil, fmt.Errorf("found multiple .paks")
			}

			f, err := os.CreateTemp("", asset.ID+"-*.pak")
			if err != nil {
				return nil, err
			}
			defer os.Remove(f.Name())

			pakW, err := bucket.NewWriter(ctx, kurablob.PAKKey(asset.ID), nil)
			if err != nil {
				return nil, err
			}

			if _, err := io.Copy(io.MultiWriter(f, pakW), tr); err != nil {
				return nil, err
			}

			if err = f.Close(); err != nil {
				return nil, err
			}

			if err = pakW.Close(); err != nil {
				return nil, err
			}

			tmp, err := os.Open(f.Name())
			if err != nil {
				return nil, err
			}

			dig, err := digest.FromReader(tmp)
			if err != nil {
				return nil, err
			}
			asset.Digest = dig.String()

			if err = tmp.Close(); err != nil {
				return nil, err
			}

			pakD = pak.NewDecoderWithKey(f.Name(), key)

			pakReport, err := pakD.Report(ctx)
			if err != nil {
				return nil, err
			}

			// The temp file name means nothing to the caller.
			pakReport.Archive = base
			asset.Size += pakReport.Size

			eg, egctx := errgroup.WithContext(ctx)
			for _, entry := range pakReport.Entries {
				eg.Go(func() error {
					return kurablob.Copy(egctx, bucket, kurablob.EntryKey(asset.ID, entry.Name), bytes.NewReader(entry.Data))
				})
			}

			if err = eg.Wait(); err != nil {
				return nil, err
			}

			report.Archive = pakReport
		case strings.EqualFold(ext, kura.ExtUAsset), strings.EqualFold(ext, kura.ExtUExp):
			buf := new(bytes.Buffer)
			if _, err := io.Copy(buf, tr); err != nil {
				return nil, err
			}

			if err := kurablob.Copy(ctx, bucket, kurablob.EntryKey(asset.ID, base), bytes.NewReader(buf.Bytes())); err != nil {
				return nil, err
			}

			analysis, err := uasset.Analyze(ctx, base, buf)
			if err != nil {
				return nil, err
			}

			if asset.Digest == "" {
				asset.Digest = analysis.Digest.String()
			}
			asset.Size += analysis.Size

			report.Analyses = append(report.Analyses, analysis)
		}
	}

	if report.Archive == nil && len(report.Analyses) == 0 {
		return nil, fmt.Errorf("no archives found")
	}

	if pakD != nil {
		if err := pakD.Close(); err != nil {
			return nil, err
		}

		asset.Entries += len(report.Archive.Entries)
	}
	asset.Entries += len(report.Analyses)

	if err := kurablob.WriteReport(ctx, bucket, asset.ID, report); err != nil {
		return nil, err
	}

	asset.Status = kura.StatusUnpacked
	asset.Error = ""

	return report, nil
}

// Receive processes upload messages until the context is done. A
// failed unpack marks the asset failed and acks the message so that a
// poison upload cannot wedge the subscription.
func Receive(ctx context.Context, bucket *blob.Bucket, db *sql.DB, subscription *pubsub.Subscription, keyring pak.Keyring) error {
	log := kura.LoggerFrom(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msg, err := subscription.Receive(ctx)
			if err != nil {
				return err
			}

			asset := &kura.Asset{
				ID: string(msg.Body),
			}

			// A message naming an unknown asset is poison, not an
			// infrastructure failure. Ack it so that it cannot
			// crash-loop the receiver.
			if err := kurasql.SelectAsset(ctx, db, asset); kuraerr.HTTPStatusCode(err) == http.StatusNotFound {
				log.Error(err, "selecting asset", "asset", asset.ID)
				msg.Ack()
				continue
			} else if err != nil {
				return err
			}

			if err := func() error {
				var key []byte
				if name := msg.Metadata["key"]; name != "" {
					var err error
					if key, err = keyring.Lookup(name); err != nil {
						return err
					}
				}

				return unpackUpload(ctx, bucket, asset, key)
			}(); err != nil {
				log.Error(err, "unpacking", "asset", asset.ID)

				asset.Status = kura.StatusFailed
				asset.Error = err.Error()
			} else {
				log.Info("unpacked", "asset", asset.ID, "entries", asset.Entries)
			}

			if err := kurasql.UpdateAsset(ctx, db, asset); err != nil {
				return err
			}

			msg.Ack()
		}
	}
}

func unpackUpload(ctx context.Context, bucket *blob.Bucket, asset *kura.Asset, key []byte) error {
	r, err := bucket.NewReader(ctx, kurablob.UploadKey(asset.ID), nil)
	if err != nil {
		return err
	}

	gr, err := gzip.NewReader(r)
	if err != nil {
		return err
	}

	if _, err = Unpack(ctx, bucket, tar.NewReader(gr), asset, key); err != nil {
		return err
	}

	if err = gr.Close(); err != nil {
		return err
	}

	return r.Close()
}
