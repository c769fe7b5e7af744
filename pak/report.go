package pak

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Text renders the report in the plain format written alongside
// extracted archives.
func (r *Report) Text() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "PAK File: %s\n", filepath.Base(r.Archive))
	fmt.Fprintf(&sb, "Size: %d bytes\n", r.Size)
	fmt.Fprintf(&sb, "Date: %s\n", r.Scanned.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Entries: %d\n", len(r.Entries))

	for _, entry := range r.Entries {
		fmt.Fprintf(&sb, "  %s (offset 0x%X, %d bytes)\n", entry.Name, entry.Offset, entry.Size)
	}

	return sb.String()
}
