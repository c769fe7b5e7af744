package kura

import (
	"strings"

	"github.com/kurahq/kura/pak"
	"github.com/kurahq/kura/uasset"
)

// Report is what unpacking an asset produces: the archive summary for
// .pak uploads and the per-member analyses for serialized assets.
type Report struct {
	Asset    *Asset             `json:"asset,omitempty"`
	Archive  *pak.Report        `json:"archive,omitempty"`
	Analyses []*uasset.Analysis `json:"analyses,omitempty"`
}

func (r *Report) Text() string {
	var sb strings.Builder

	if r.Archive != nil {
		sb.WriteString(r.Archive.Text())
	}

	for _, analysis := range r.Analyses {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(analysis.Text())
	}

	return sb.String()
}
