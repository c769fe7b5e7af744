package kuraregexp

func IsAssetName(name string) bool {
	return AssetName.MatchString(name)
}

func IsAssetVersion(name string) bool {
	return AssetVersion.MatchString(name)
}

func IsUUID(name string) bool {
	return UUID.MatchString(name)
}

func IsPAK(name string) bool {
	return PAK.MatchString(name)
}

func IsUAsset(name string) bool {
	return UAsset.MatchString(name)
}

func IsArchive(name string) bool {
	return Archive.MatchString(name)
}
