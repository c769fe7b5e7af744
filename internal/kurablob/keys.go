package kurablob

import "path"

func UploadKey(id string) string {
	return path.Join(id, "upload.tgz")
}

func PAKKey(id string) string {
	return path.Join(id, "archive.pak")
}

func ReportKey(id string) string {
	return path.Join(id, "report.json")
}

func ExtractedPrefix(id string) string {
	return path.Join(id, "extracted") + "/"
}

func EntryKey(id, name string) string {
	return path.Join(id, "extracted", path.Base(name))
}
