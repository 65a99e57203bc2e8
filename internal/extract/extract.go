// Package extract turns uploaded files into plain note text.
package extract

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for uploads that are neither PDF nor plain text.
var ErrUnsupportedType = errors.New("unsupported file type (only PDF and TXT allowed)")

// ContentType resolves the media type of an upload, detecting it from the
// filename extension when the client sent none.
func ContentType(filename, declared string) (string, error) {
	ct := strings.TrimSpace(strings.ToLower(strings.Split(declared, ";")[0]))
	if ct == "" || ct == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".txt":
			ct = "text/plain"
		case ".pdf":
			ct = "application/pdf"
		}
	}
	switch ct {
	case "text/plain", "application/pdf":
		return ct, nil
	}
	return "", ErrUnsupportedType
}

// Text returns the note text of an upload.
func Text(contentType string, content []byte) (string, error) {
	if contentType == "application/pdf" {
		return PDFText(content)
	}
	return string(content), nil
}

// PDFText concatenates the plain text of every page. Pages that fail to decode
// are skipped.
func PDFText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
