package constants

import "strings"

// Format is the coarse input family a file extension maps to.
type Format string

const (
	PDF     Format = "PDF"
	EBOOK   Format = "EBOOK"
	IMAGE   Format = "IMAGE"
	UNKNOWN Format = "UNKNOWN"
)

// AllowedExtensions holds the file extensions accepted for conversion, keyed by format.
var AllowedExtensions = map[string]Format{
	"pdf":  PDF,
	"epub": EBOOK,
	"xps":  EBOOK,
	"cbz":  EBOOK,
	"fb2":  EBOOK,
	"mobi": EBOOK,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"gif":  IMAGE,
	"bmp":  IMAGE,
	"tif":  IMAGE,
	"tiff": IMAGE,
	"webp": IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the format for ext, or UNKNOWN.
func MapExtToFormat(ext string) Format {
	if f, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return f
	}
	return UNKNOWN
}
