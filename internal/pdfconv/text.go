package pdfconv

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlain = "text/plain"
)

// ExtractText returns the readable text of a resume file.
func ExtractText(mime string, data []byte) (string, error) {
	switch mime {
	case MimePlain:
		return string(data), nil
	case MimePDF:
		return extractPDFText(data)
	case MimeDOCX:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", mime)
	}
}

// FileSummary is the text sent to the reviewer when extraction fails.
func FileSummary(name string, size int, mime string) string {
	return fmt.Sprintf("Resume file: %s, Size: %d bytes, Type: %s", name, size, mime)
}

func extractPDFText(data []byte) (text string, err error) {
	// ledongthuc/pdf는 손상된 입력에서 panic 가능
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(pageText); t != "" {
			lines = append(lines, t)
		}
	}

	text = strings.Join(lines, "\n")
	if text == "" {
		return "", fmt.Errorf("pdf has no extractable text")
	}
	return text, nil
}

var xmlTag = regexp.MustCompile(`<[^>]+>`)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(content), nil
}
