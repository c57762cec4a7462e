package utils

import (
	"os"
	"path/filepath"
	"regexp"
)

// --- Directory Helper ---

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

var filenameRe = regexp.MustCompile(`[^\w.\-]`)

// SanitizeFilename strips path components and shell-hostile characters from
// an uploaded filename.
func SanitizeFilename(name string) string {
	clean := filenameRe.ReplaceAllString(filepath.Base(name), "_")
	if clean == "" {
		return "file"
	}
	return clean
}
