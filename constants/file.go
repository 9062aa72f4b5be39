package constants

import "strings"

// Format is the coarse document class the pipeline distinguishes.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
)

// AllowedExtensions holds the upload extensions the service accepts.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its Format.
// Returns "" for anything the pipeline cannot process.
func MapExtToFormat(ext string) Format {
	switch ext {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "bmp", "tiff":
		return IMAGE
	}
	return ""
}
