package render

import (
	"fmt"
	"path/filepath"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// UnifiedDiff returns the unified diff turning before into after, labelled
// with path. Identical inputs yield "".
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	name := filepath.ToSlash(path)
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+name, "b/"+name, before, edits))
}
