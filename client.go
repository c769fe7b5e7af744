package kura

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Client struct {
	HTTPClient *http.Client
	Base       *url.URL
}

func (c *Client) init() error {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Base == nil {
		var err error
		c.Base, err = url.Parse("http://localhost:8080/")
		return err
	}
	return nil
}

func errorFromResponse(res *http.Response, wantStatusCode int) error {
	if res.StatusCode == wantStatusCode {
		return nil
	}

	body := map[string]string{}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil {
		if body["error"] != "" {
			return fmt.Errorf("http status code %d: %s", res.StatusCode, body["error"])
		}
	}

	return fmt.Errorf("http status code %d", res.StatusCode)
}

func (c *Client) GetAsset(ctx context.Context, asset *Asset) error {
	if err := c.init(); err != nil {
		return err
	}

	if err := ValidateAsset(asset); err != nil {
		return err
	}

	elems := []string{"/api/v1/assets"}

	if asset.ID != "" {
		elems = append(elems, asset.ID)
	} else if asset.Name != "" && asset.Version != "" {
		elems = append(elems, asset.Name, asset.Version)
	} else if asset.Name != "" {
		elems = append(elems, asset.Name)
	} else {
		return fmt.Errorf("unable to uniquely identify asset")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base.JoinPath(elems...).String(), nil)
	if err != nil {
		return err
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err = errorFromResponse(res, http.StatusOK); err != nil {
		return err
	}

	return json.NewDecoder(res.Body).Decode(asset)
}

func (c *Client) GetAssets(ctx context.Context) ([]Asset, error) {
	if err := c.init(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base.JoinPath("/api/v1/assets").String(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if err = errorFromResponse(res, http.StatusOK); err != nil {
		return nil, err
	}

	assets := []Asset{}
	if err = json.NewDecoder(res.Body).Decode(&assets); err != nil {
		return nil, err
	}

	return assets, nil
}

// UploadAsset posts the body to the asset upload endpoint. If keyName
// is nonempty, the unpacker decrypts the archive with that key from
// its keyring.
func (c *Client) UploadAsset(ctx context.Context, body io.Reader, contentType string, asset *Asset, keyName string) error {
	if err := c.init(); err != nil {
		return err
	}

	if !strings.EqualFold(contentType, "application/x-gzip") &&
		!strings.EqualFold(contentType, "application/x-tar") &&
		!strings.EqualFold(contentType, "application/octet-stream") {
		return fmt.Errorf("invalid Content-Type %s", contentType)
	}

	if err := ValidateAsset(asset); err != nil {
		return err
	}

	elems := []string{"/api/v1/assets"}

	if asset.Name != "" && asset.Version != "" {
		elems = append(elems, asset.Name, asset.Version)
	} else if asset.Name != "" {
		elems = append(elems, asset.Name)
	} else {
		return fmt.Errorf("unable to uniquely identify asset")
	}

	u := c.Base.JoinPath(elems...)
	if keyName != "" {
		values := url.Values{}
		values.Add("key", keyName)
		u.RawQuery = values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", contentType)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err = errorFromResponse(res, http.StatusCreated); err != nil {
		return err
	}

	return json.NewDecoder(res.Body).Decode(asset)
}

// GetReport fetches the unpack report for an asset.
func (c *Client) GetReport(ctx context.Context, asset *Asset) (*Report, error) {
	if err := c.init(); err != nil {
		return nil, err
	}

	if err := c.GetAsset(ctx, asset); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base.JoinPath("/assets", asset.ID, "report.json").String(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if err = errorFromResponse(res, http.StatusOK); err != nil {
		return nil, err
	}

	report := &Report{}
	if err = json.NewDecoder(res.Body).Decode(report); err != nil {
		return nil, err
	}

	return report, nil
}

func (c *Client) Readyz(ctx context.Context) error {
	return c.getOK(ctx, "/readyz")
}

func (c *Client) Healthz(ctx context.Context) error {
	return c.getOK(ctx, "/healthz")
}

func (c *Client) getOK(ctx context.Context, path string) error {
	if err := c.init(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base.JoinPath(path).String(), nil)
	if err != nil {
		return err
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return errorFromResponse(res, http.StatusOK)
}
