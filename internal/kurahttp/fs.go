package kurahttp

import (
	// Embed the bytes of some files.
	_ "embed"
)

var (
	//go:embed swagger.json
	swaggerJSON []byte
)
