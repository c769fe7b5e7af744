package kurahttp

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kurahq/kura/internal/kuraregexp"
)

var (
	idParam      = fmt.Sprintf("{id:%s}", kuraregexp.UUID.String())
	fileParam    = `{file:[a-zA-Z0-9-_]+(\.[a-zA-Z]+)+}`
	assetParam   = "{asset}"
	versionParam = "{version}"
)

func getID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func getFile(r *http.Request) string {
	return chi.URLParam(r, "file")
}

func getAsset(r *http.Request) string {
	return chi.URLParam(r, "asset")
}

func getVersion(r *http.Request) string {
	return chi.URLParam(r, "version")
}

func getPretty(r *http.Request) bool {
	pretty, _ := strconv.ParseBool(r.URL.Query().Get("pretty"))
	return pretty
}
