package llm

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/records-extractor/constants"
)

// EncodeDocument reads path and base64-encodes it for the model. The content type
// comes from the extension only: png/jpg/jpeg are sent as image/jpeg, pdf as
// application/pdf. Any other extension returns an empty Document and no error.
// The whole file is read into memory; callers bound the size upstream.
func EncodeDocument(path string) (Document, error) {
	clean := filepath.Clean(path)
	ext := filepath.Ext(clean)

	var mt string
	switch {
	case constants.IsImageExt(ext):
		mt = constants.MIMEJPEG
	case constants.IsPDFExt(ext):
		mt = constants.MIMEPDF
	}

	b, err := os.ReadFile(clean)
	if err != nil {
		return Document{}, err
	}
	if mt == "" {
		return Document{Path: clean, Size: int64(len(b))}, nil
	}

	doc := Document{
		MIMEType: mt,
		Data:     base64.StdEncoding.EncodeToString(b),
		Path:     clean,
		Size:     int64(len(b)),
	}
	if mt == constants.MIMEPDF {
		doc.Pages = pdfPageCount(b)
	}
	return doc, nil
}

// pdfPageCount returns the page count, or 0 if the PDF cannot be parsed.
func pdfPageCount(b []byte) (pages int) {
	defer func() {
		// the pdf reader panics on some malformed inputs
		if recover() != nil {
			pages = 0
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
