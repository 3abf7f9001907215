package constants

import "strings"

// MIME types the service cares about.
const (
	MIMESpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEJPEG        = "image/jpeg"
	MIMEPNG         = "image/png"
	MIMEPDF         = "application/pdf"
	MIMEOctetStream = "application/octet-stream"
)

// AllowedExtensions holds the extensions picked up by directory walks.
var AllowedExtensions = map[string]struct{}{
	"xlsx": {},
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsImageExt reports whether ext is one of the image extensions the model accepts.
func IsImageExt(ext string) bool {
	switch NormalizeExt(ext) {
	case "png", "jpg", "jpeg":
		return true
	}
	return false
}

// IsPDFExt reports whether ext is a PDF extension.
func IsPDFExt(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}
