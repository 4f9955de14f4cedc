package constants

import (
	"path/filepath"
	"strings"
)

// FileFormat is the coarse input format routed through the pipeline.
type FileFormat string

const (
	PDF   FileFormat = "PDF"
	IMAGE FileFormat = "IMAGE"
)

// DefaultExtensions holds the default allowed file extensions for ingestion.
var DefaultExtensions = []string{"png", "jpg", "jpeg", "tiff", "pdf"}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its pipeline format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg", "tiff", "tif":
		return IMAGE
	default:
		return ""
	}
}

// MapPathToFormat is MapExtToFormat on a path's extension.
func MapPathToFormat(path string) FileFormat {
	return MapExtToFormat(filepath.Ext(path))
}
