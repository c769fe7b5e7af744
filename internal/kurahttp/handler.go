package kurahttp

import (
	"database/sql"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kurahq/kura"
	"github.com/kurahq/kura/internal/kurablob"
	"github.com/kurahq/kura/internal/kurasql"
	swagger "github.com/swaggo/http-swagger/v2"
	"github.com/timewasted/go-accept-headers"
	"gocloud.dev/blob"
	"gocloud.dev/pubsub"
)

func NewHandler(bucket *blob.Bucket, db *sql.DB, topic *pubsub.Topic) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)

	r.Route("/swagger", func(r chi.Router) {
		r.Get("/", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently).ServeHTTP)

		r.Get("/doc.json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(swaggerJSON)
		})

		r.Get("/*", swagger.Handler())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			_ = respondErrorJSON(w, err, false)
			return
		}

		fmt.Fprint(w, "ok")
	})

	r.Get("/api/v1/assets", func(w http.ResponseWriter, r *http.Request) {
		var (
			ctx       = r.Context()
			pretty    = getPretty(r)
			limit, _  = strconv.Atoi(r.URL.Query().Get("limit"))
			offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
		)

		assets, err := kurasql.SelectAssets(ctx, db, limit, offset)
		if err != nil {
			_ = respondErrorJSON(w, err, pretty)
			return
		}

		_ = respondJSON(w, assets, pretty)
	})

	getAssetHandler := func(asset func(*http.Request) *kura.Asset) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var (
				ctx    = r.Context()
				a      = asset(r)
				pretty = getPretty(r)
			)

			if err := kura.ValidateAsset(a); err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			if err := kurasql.SelectAsset(ctx, db, a); err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			_ = respondJSON(w, a, pretty)
		}
	}

	r.Get(fmt.Sprintf("/api/v1/assets/%s", idParam), getAssetHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{ID: getID(r)}
	}))

	r.Get(fmt.Sprintf("/api/v1/assets/%s", assetParam), getAssetHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{Name: getAsset(r)}
	}))

	r.Get(fmt.Sprintf("/api/v1/assets/%s/%s", assetParam, versionParam), getAssetHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{Name: getAsset(r), Version: getVersion(r)}
	}))

	getFileHandler := func(asset func(*http.Request) *kura.Asset) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var (
				ctx    = r.Context()
				a      = asset(r)
				file   = getFile(r)
				pretty = getPretty(r)
			)

			if err := kura.ValidateAsset(a); err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			if err := kurasql.SelectAsset(ctx, db, a); err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			rc, contentType, err := kurablob.NewAssetFileReader(ctx, bucket, a, file, pretty)
			if err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}
			defer rc.Close()

			w.Header().Set("Content-Type", contentType)

			_, _ = io.Copy(w, rc)
		}
	}

	r.Get(fmt.Sprintf("/assets/%s/%s", idParam, fileParam), getFileHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{ID: getID(r)}
	}))

	r.Get(fmt.Sprintf("/assets/%s/%s", assetParam, fileParam), getFileHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{Name: getAsset(r)}
	}))

	r.Get(fmt.Sprintf("/assets/%s/%s/%s", assetParam, versionParam, fileParam), getFileHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{Name: getAsset(r), Version: getVersion(r)}
	}))

	// The report with no extension negotiates its representation.
	r.Get(fmt.Sprintf("/assets/%s/report", idParam), func(w http.ResponseWriter, r *http.Request) {
		var (
			ctx    = r.Context()
			a      = &kura.Asset{ID: getID(r)}
			pretty = getPretty(r)
		)

		if err := kura.ValidateAsset(a); err != nil {
			_ = respondErrorJSON(w, err, pretty)
			return
		}

		if err := kurasql.SelectAsset(ctx, db, a); err != nil {
			_ = respondErrorJSON(w, err, pretty)
			return
		}

		file := "report.json"
		if negotiated, err := accept.Negotiate(r.Header.Get("Accept"), "application/json", "text/plain"); err == nil && negotiated == "text/plain" {
			file = "report.txt"
		}

		rc, contentType, err := kurablob.NewAssetFileReader(ctx, bucket, a, file, pretty)
		if err != nil {
			_ = respondErrorJSON(w, err, pretty)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", contentType)

		_, _ = io.Copy(w, rc)
	})

	postAssetHandler := func(asset func(*http.Request) *kura.Asset) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var (
				ctx    = r.Context()
				a      = asset(r)
				pretty = getPretty(r)
			)

			if err := kura.ValidateAsset(a); err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			if err = kurablob.WriteUpload(ctx, bucket, db, mediaType, params["boundary"], a, r.Body); err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			msg := &pubsub.Message{
				Body: []byte(a.ID),
			}
			if key := r.URL.Query().Get("key"); key != "" {
				msg.Metadata = map[string]string{"key": key}
			}

			if err = topic.Send(ctx, msg); err != nil {
				_ = respondErrorJSON(w, err, pretty)
				return
			}

			if strings.EqualFold(mediaType, "multipart/form-data") {
				if referer := r.Header.Get("Referer"); referer != "" {
					http.Redirect(w, r, referer, http.StatusFound)
					return
				}
			}

			w.WriteHeader(http.StatusCreated)
			_ = respondJSON(w, a, pretty)
		}
	}

	r.Post(fmt.Sprintf("/api/v1/assets/%s", assetParam), postAssetHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{
			Name:   getAsset(r),
			Status: kura.StatusUploaded,
		}
	}))

	r.Post(fmt.Sprintf("/api/v1/assets/%s/%s", assetParam, versionParam), postAssetHandler(func(r *http.Request) *kura.Asset {
		return &kura.Asset{
			Name:    getAsset(r),
			Version: getVersion(r),
			Status:  kura.StatusUploaded,
		}
	}))

	return r
}
