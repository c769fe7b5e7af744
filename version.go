package kura

import "runtime/debug"

// VersionCore is the SemVer version core of kura.
const VersionCore = "0.1.0"

// SemVer returns the version of kura.
func SemVer() string {
	version := VersionCore

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		var (
			revision string
			modified bool
		)

		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value == "true"
			}
		}

		if len(revision) >= 7 {
			version += "+" + revision[:7]

			if modified {
				version += "*"
			}
		}
	}

	return version
}
