package kurablob_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"io"
	"net/http"
	"testing"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kurablob"
	"github.com/kurahq/kura/internal/kuraerr"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	if _, err = db.ExecContext(context.Background(), `CREATE TABLE asset (
	id VARCHAR (36) PRIMARY KEY,
	name VARCHAR (32) NOT NULL,
	version VARCHAR (32),
	status TEXT NOT NULL DEFAULT 'unknown',
	digest VARCHAR (128),
	entries INTEGER NOT NULL DEFAULT 0,
	size BIGINT NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (name, version)
);`); err != nil {
		t.Fatal(err)
	}

	return db
}

func TestWriteUpload(t *testing.T) {
	var (
		ctx    = context.Background()
		bucket = openBucket(t)
		db     = openDB(t)
		body   = []byte("raw archive bytes")
		asset  = &kura.Asset{
			Name:   "test",
			Status: kura.StatusUploaded,
		}
	)

	if err := kurablob.WriteUpload(ctx, bucket, db, "application/octet-stream", "", asset, bytes.NewReader(body)); err != nil {
		t.Fatal(err)
	}

	if asset.ID == "" {
		t.Fatal("expected an ID to be assigned")
	}

	rc, err := bucket.NewReader(ctx, kurablob.UploadKey(asset.ID), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	gr, err := gzip.NewReader(rc)
	if err != nil {
		t.Fatal(err)
	}

	tr := tar.NewReader(gr)

	hdr, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}

	if hdr.Name != "archive.pak" {
		t.Errorf("unexpected member %s", hdr.Name)
	}

	got, err := io.ReadAll(tr)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, body) {
		t.Errorf("expected %q, got %q", body, got)
	}

	if _, err = tr.Next(); err != io.EOF {
		t.Errorf("expected a single member, got %v", err)
	}
}

func TestWriteUploadUnsupportedMediaType(t *testing.T) {
	var (
		ctx    = context.Background()
		bucket = openBucket(t)
		db     = openDB(t)
		asset  = &kura.Asset{Name: "test"}
	)

	err := kurablob.WriteUpload(ctx, bucket, db, "text/plain", "", asset, bytes.NewReader(nil))
	if err == nil {
		t.Fatal("expected an error")
	}

	if kuraerr.HTTPStatusCode(err) != http.StatusUnsupportedMediaType {
		t.Errorf("unexpected status code %d", kuraerr.HTTPStatusCode(err))
	}
}
