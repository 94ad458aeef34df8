// Package resume turns uploaded or stored resume documents into plain text
// the grading prompt can use.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported document types
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxDocumentSize bounds the size of a resume document.
const MaxDocumentSize = 10 << 20

// ErrUnsupportedType is returned for documents that are not text, PDF or DOCX.
var ErrUnsupportedType = errors.New("unsupported file type")

// ExtractText returns the cleaned text of a document of the given MIME type.
func ExtractText(mime string, data []byte) (string, error) {
	if len(data) > MaxDocumentSize {
		return "", fmt.Errorf("document is %d bytes, limit is %d", len(data), MaxDocumentSize)
	}

	var (
		text string
		err  error
	)
	switch baseMIME(mime) {
	case MIMEText, "text/markdown":
		text = string(data)
	case MIMEPDF:
		text, err = extractPDFText(data)
	case MIMEDOCX:
		text, err = extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

// DetectMIME guesses the type of a document from its file name, falling
// back to its leading bytes.
func DetectMIME(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	case ".txt", ".md", ".markdown":
		return MIMEText
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return MIMEPDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		// DOCX files are zip archives
		return MIMEDOCX
	}
	return baseMIME(http.DetectContentType(data))
}

func baseMIME(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripDocxMarkup(doc.Editable().GetContent()), nil
}

// readAll reads at most MaxDocumentSize+1 bytes so oversized documents are detected.
func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
}
