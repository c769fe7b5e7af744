package kura

const (
	ExtPAK    = ".pak"
	ExtUAsset = ".uasset"
	ExtUExp   = ".uexp"
)

const (
	ContentTypePAK    = "application/octet-stream"
	ContentTypeReport = "application/json"
)
