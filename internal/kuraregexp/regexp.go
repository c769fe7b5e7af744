package kuraregexp

import "regexp"

var (
	AssetName    = regexp.MustCompile("^[a-zA-Z0-9-_]{1,32}$")
	AssetVersion = regexp.MustCompile(`^[a-zA-Z0-9-_\.]{1,32}$`)
	UUID         = regexp.MustCompile("^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$")

	PAK     = regexp.MustCompile(`(?i)^[\w/.-]+\.pak$`)
	UAsset  = regexp.MustCompile(`(?i)^[\w/.-]+\.(uasset|uexp)$`)
	Archive = regexp.MustCompile(`(?i)^[\w/.-]+\.(pak|uasset|uexp)$`)
)
