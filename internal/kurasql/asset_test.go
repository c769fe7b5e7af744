package kurasql_test

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraerr"
	"github.com/kurahq/kura/internal/kurasql"

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

func TestInsertSelectAsset(t *testing.T) {
	var (
		ctx   = context.Background()
		db    = openDB(t)
		asset = &kura.Asset{
			Name:    "test",
			Version: "1.0.0",
			Status:  kura.StatusUploaded,
		}
	)

	if err := kurasql.InsertAsset(ctx, db, asset); err != nil {
		t.Fatal(err)
	}

	if asset.ID == "" {
		t.Error("expected an ID to be assigned")
	}

	if asset.Created.IsZero() {
		t.Error("expected created to be set")
	}

	byID := &kura.Asset{ID: asset.ID}
	if err := kurasql.SelectAsset(ctx, db, byID); err != nil {
		t.Fatal(err)
	}

	if byID.Name != asset.Name || byID.Version != asset.Version || byID.Status != kura.StatusUploaded {
		t.Errorf("unexpected asset %+v", byID)
	}

	byNameVersion := &kura.Asset{Name: asset.Name, Version: asset.Version}
	if err := kurasql.SelectAsset(ctx, db, byNameVersion); err != nil {
		t.Fatal(err)
	}

	if byNameVersion.ID != asset.ID {
		t.Errorf("expected ID %s, got %s", asset.ID, byNameVersion.ID)
	}

	byName := &kura.Asset{Name: asset.Name}
	if err := kurasql.SelectAsset(ctx, db, byName); err != nil {
		t.Fatal(err)
	}

	if byName.ID != asset.ID {
		t.Errorf("expected ID %s, got %s", asset.ID, byName.ID)
	}
}

func TestSelectAssetNotFound(t *testing.T) {
	var (
		ctx   = context.Background()
		db    = openDB(t)
		asset = &kura.Asset{ID: "4f9f54de-9135-4ece-9d6a-6265b54cbcf6"}
	)

	err := kurasql.SelectAsset(ctx, db, asset)
	if err == nil {
		t.Fatal("expected an error for a missing asset")
	}

	if kuraerr.HTTPStatusCode(err) != http.StatusNotFound {
		t.Errorf("unexpected status code %d", kuraerr.HTTPStatusCode(err))
	}
}

func TestSelectAssets(t *testing.T) {
	var (
		ctx = context.Background()
		db  = openDB(t)
	)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if err := kurasql.InsertAsset(ctx, db, &kura.Asset{
			Name:   name,
			Status: kura.StatusUploaded,
		}); err != nil {
			t.Fatal(err)
		}
	}

	// No limit must list everything.
	assets, err := kurasql.SelectAssets(ctx, db, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	if len(assets) != 3 {
		t.Errorf("expected 3 assets, got %d", len(assets))
	}

	if assets, err = kurasql.SelectAssets(ctx, db, 2, 0); err != nil {
		t.Fatal(err)
	}

	if len(assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(assets))
	}

	if assets, err = kurasql.SelectAssets(ctx, db, 2, 2); err != nil {
		t.Fatal(err)
	}

	if len(assets) != 1 {
		t.Errorf("expected 1 asset, got %d", len(assets))
	}
}

func TestUpdateAsset(t *testing.T) {
	var (
		ctx   = context.Background()
		db    = openDB(t)
		asset = &kura.Asset{
			Name:    "test",
			Version: "1.0.0",
			Status:  kura.StatusUploaded,
		}
	)

	if err := kurasql.InsertAsset(ctx, db, asset); err != nil {
		t.Fatal(err)
	}

	asset.Status = kura.StatusUnpacked
	asset.Entries = 3
	asset.Digest = "sha256:6b86b273ff34fce19d6b804eff5a3f5747ada4eaa22f1d49c01e52ddb7875b4b"

	if err := kurasql.UpdateAsset(ctx, db, asset); err != nil {
		t.Fatal(err)
	}

	got := &kura.Asset{ID: asset.ID}
	if err := kurasql.SelectAsset(ctx, db, got); err != nil {
		t.Fatal(err)
	}

	if got.Status != kura.StatusUnpacked || got.Entries != 3 || got.Digest != asset.Digest {
		t.Errorf("unexpected asset %+v", got)
	}

	byNameVersion := &kura.Asset{
		Name:    asset.Name,
		Version: asset.Version,
		Status:  kura.StatusFailed,
		Error:   "it broke",
	}
	if err := kurasql.UpdateAsset(ctx, db, byNameVersion); err != nil {
		t.Fatal(err)
	}

	if byNameVersion.ID != asset.ID {
		t.Errorf("expected ID %s, got %s", asset.ID, byNameVersion.ID)
	}

	if err := kurasql.SelectAsset(ctx, db, got); err != nil {
		t.Fatal(err)
	}

	if got.Status != kura.StatusFailed || got.Error != "it broke" {
		t.Errorf("unexpected asset %+v", got)
	}
}
