// Package pathutil normalizes file paths for reports.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize makes path relative to root when it lies under it, otherwise
// returns it unchanged. Results use forward slashes so reports are identical
// across platforms.
func Normalize(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
