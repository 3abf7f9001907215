package extract

import (
	"mime"
	"path/filepath"

	"github.com/joseph-ayodele/records-extractor/constants"
)

// Classify picks the extraction strategy for a declared MIME type. Only the
// exact OOXML spreadsheet type goes down the tabular path.
func Classify(mimeType string) constants.Strategy {
	if mimeType == constants.MIMESpreadsheet {
		return constants.StrategyTabular
	}
	return constants.StrategyAIDelegated
}

// DetectMIME guesses a MIME type from a file name, for callers without a declared one.
func DetectMIME(filename string) string {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	switch ext {
	case "xlsx":
		return constants.MIMESpreadsheet
	case "jpg", "jpeg":
		return constants.MIMEJPEG
	case "png":
		return constants.MIMEPNG
	case "pdf":
		return constants.MIMEPDF
	}
	if mt := mime.TypeByExtension("." + ext); ext != "" && mt != "" {
		return mt
	}
	return constants.MIMEOctetStream
}
