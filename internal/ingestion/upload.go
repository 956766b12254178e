package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// MaxUploadBytes caps the size of an uploaded resume
const MaxUploadBytes = 10 << 20

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:cr[^>]*/>`)
	docxTab          = regexp.MustCompile(`<w:tab[^>]*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// SetPDFLicense registers a metered UniDoc license key for PDF extraction
func SetPDFLicense(key string) error {
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set PDF license: %w", err)
	}
	return nil
}

// ExtractUploadText reads an uploaded resume and returns its cleaned text.
// PDF, DOCX, plain text, and Markdown files are supported.
func ExtractUploadText(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &Error{Source: path, Message: "failed to open upload", Cause: err}
	}
	if info.Size() > MaxUploadBytes {
		return "", &Error{Source: path, Message: fmt.Sprintf("upload exceeds %d bytes", MaxUploadBytes)}
	}

	var raw string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &Error{Source: path, Message: "failed to read upload", Cause: err}
		}
		raw, err = pdfText(data)
		if err != nil {
			return "", &Error{Source: path, Message: "failed to extract PDF text", Cause: err}
		}
	case ".docx":
		raw, err = docxText(path)
		if err != nil {
			return "", &Error{Source: path, Message: "failed to extract DOCX text", Cause: err}
		}
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &Error{Source: path, Message: "failed to read upload", Cause: err}
		}
		raw = string(data)
	default:
		return "", &Error{Source: path, Message: fmt.Sprintf("unsupported file type %q", ext)}
	}

	text := CleanText(raw)
	if text == "" {
		return "", &Error{Source: path, Message: "upload", Cause: ErrNoContent}
	}
	return text, nil
}

func pdfText(data []byte) (string, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("failed to get page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("failed to create extractor for page %d: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func docxText(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

// docxXMLToText flattens WordprocessingML into plain text, one paragraph per line
func docxXMLToText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}
