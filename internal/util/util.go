package util

import (
	"path"
	"strings"
)

// ComputeBaseHref calculates the relative path to the site root
// so that navigation links work correctly for pages at any depth.
// relPath uses forward slashes; a page at guide/a/b.md gets "../../".
func ComputeBaseHref(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, "/") + 1
	return strings.Repeat("../", depth)
}
