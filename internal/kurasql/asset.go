package kurasql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kuraerr"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS asset (
	id VARCHAR (36) PRIMARY KEY,
	name VARCHAR (32) NOT NULL,
	version VARCHAR (32),
	status TEXT NOT NULL DEFAULT 'unknown',
	digest VARCHAR (128),
	entries INTEGER NOT NULL DEFAULT 0,
	size BIGINT NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	updated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	UNIQUE (name, version)
);`); err != nil {
		return err
	}

	return nil
}

func SelectAsset(ctx context.Context, db *sql.DB, asset *kura.Asset) error {
	if asset.ID != "" {
		if err := db.QueryRowContext(ctx,
			"SELECT name, version, status, digest, entries, size, error, created, updated FROM asset WHERE id = $1",
			asset.ID,
		).Scan(&asset.Name, &asset.Version, &asset.Status, &asset.Digest, &asset.Entries, &asset.Size, &asset.Error, &asset.Created, &asset.Updated); errors.Is(err, sql.ErrNoRows) {
			return kuraerr.HTTPStatusCodeError(err, http.StatusNotFound)
		} else if err != nil {
			return err
		}
	} else if asset.Name != "" && asset.Version != "" {
		if err := db.QueryRowContext(ctx,
			"SELECT id, status, digest, entries, size, error, created, updated FROM asset WHERE name = $1 AND version = $2",
			asset.Name, asset.Version,
		).Scan(&asset.ID, &asset.Status, &asset.Digest, &asset.Entries, &asset.Size, &asset.Error, &asset.Created, &asset.Updated); errors.Is(err, sql.ErrNoRows) {
			return kuraerr.HTTPStatusCodeError(err, http.StatusNotFound)
		} else if err != nil {
			return err
		}
	} else if asset.Name != "" {
		if err := db.QueryRowContext(ctx,
			"SELECT id, version, status, digest, entries, size, error, created, updated FROM asset WHERE name = $1 ORDER BY created",
			asset.Name,
		).Scan(&asset.ID, &asset.Version, &asset.Status, &asset.Digest, &asset.Entries, &asset.Size, &asset.Error, &asset.Created, &asset.Updated); errors.Is(err, sql.ErrNoRows) {
			return kuraerr.HTTPStatusCodeError(err, http.StatusNotFound)
		} else if err != nil {
			return err
		}
	} else {
		return fmt.Errorf("unable to uniquely identify asset")
	}

	return nil
}

func SelectAssets(ctx context.Context, db *sql.DB, limit, offset int) ([]kura.Asset, error) {
	var (
		query = "SELECT id, name, version, status, digest, entries, size, error, created, updated FROM asset ORDER BY created"
		args  = []any{}
	)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	assets := []kura.Asset{}
	for rows.Next() {
		asset := kura.Asset{}

		if err = rows.Scan(&asset.ID, &asset.Name, &asset.Version, &asset.Status, &asset.Digest, &asset.Entries, &asset.Size, &asset.Error, &asset.Created, &asset.Updated); err != nil {
			return nil, err
		}

		assets = append(assets, asset)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err = rows.Close(); err != nil {
		return nil, err
	}

	return assets, nil
}

func InsertAsset(ctx context.Context, db *sql.DB, asset *kura.Asset) error {
	asset.ID = uuid.NewString()

	if err := db.QueryRowContext(ctx,
		"INSERT INTO asset (id, name, version, status, digest, entries, size, error) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) returning created, updated",
		asset.ID, asset.Name, asset.Version, asset.Status, asset.Digest, asset.Entries, asset.Size, asset.Error,
	).Scan(&asset.Created, &asset.Updated); errors.Is(err, sql.ErrNoRows) {
		return kuraerr.HTTPStatusCodeError(err, http.StatusNotFound)
	} else if err != nil {
		return err
	}

	return nil
}

func UpdateAsset(ctx context.Context, db *sql.DB, asset *kura.Asset) error {
	if asset.ID != "" {
		asset.Updated = time.Now()

		if err := db.QueryRowContext(ctx,
			"UPDATE asset SET name = $2, version = $3, status = $4, digest = $5, entries = $6, size = $7, error = $8, updated = $9 WHERE id = $1 RETURNING created",
			asset.ID, asset.Name, asset.Version, asset.Status, asset.Digest, asset.Entries, asset.Size, asset.Error, asset.Updated,
		).Scan(&asset.Created); errors.Is(err, sql.ErrNoRows) {
			return kuraerr.HTTPStatusCodeError(err, http.StatusNotFound)
		} else if err != nil {
			return err
		}
	} else if asset.Name != "" && asset.Version != "" {
		asset.Updated = time.Now()

		if err := db.QueryRowContext(ctx,
			"UPDATE asset SET status = $3, digest = $4, entries = $5, size = $6, error = $7, updated = $8 WHERE name = $1 AND version = $2 RETURNING id, created",
			asset.Name, asset.Version, asset.Status, asset.Digest, asset.Entries, asset.Size, asset.Error, asset.Updated,
		).Scan(&asset.ID, &asset.Created); errors.Is(err, sql.ErrNoRows) {
			return kuraerr.HTTPStatusCodeError(err, http.StatusNotFound)
		} else if err != nil {
			return err
		}
	} else {
		return fmt.Errorf("unable to uniquely identify asset")
	}

	return nil
}
