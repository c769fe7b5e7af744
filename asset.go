package kura

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kurahq/kura/internal/kuraerr"
	"github.com/kurahq/kura/internal/kuraregexp"
)

const (
	StatusUploaded = "uploaded"
	StatusUnpacked = "unpacked"
	StatusFailed   = "failed"
)

type Asset struct {
	ID      string    `json:"id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Version string    `json:"version,omitempty"`
	Status  string    `json:"status,omitempty"`
	Digest  string    `json:"digest,omitempty"`
	Entries int       `json:"entries,omitempty"`
	Size    int64     `json:"size,omitempty"`
	Error   string    `json:"error,omitempty"`
	Created time.Time `json:"created,omitempty"`
	Updated time.Time `json:"updated,omitempty"`
}

func ValidateAsset(asset *Asset) error {
	errs := []error{}

	if asset.ID != "" && !kuraregexp.IsUUID(asset.ID) {
		errs = append(errs, fmt.Errorf("invalid asset ID %s", asset.ID))
	}

	if asset.Name != "" && !kuraregexp.IsAssetName(asset.Name) {
		errs = append(errs, fmt.Errorf("invalid asset name %s", asset.Name))
	}

	if asset.Version != "" && !kuraregexp.IsAssetVersion(asset.Version) {
		errs = append(errs, fmt.Errorf("invalid asset version %s", asset.Version))
	}

	return kuraerr.HTTPStatusCodeError(errors.Join(errs...), http.StatusBadRequest)
}
