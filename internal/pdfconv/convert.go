/**
 * Name: pdfconv
 * Description: PDF 첫 페이지를 PNG 미리보기로 렌더링
 * Workflow:
 *   1. MuPDF(go-fitz)로 메모리에서 문서 열기
 *   2. 1페이지를 지정 DPI로 래스터화
 *   3. PNG 인코딩 후 <원본이름>.png 로 반환
 */
package pdfconv

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"path"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var ErrEmptyPDF = errors.New("pdf is empty")

// Image is a rendered preview.
type Image struct {
	FileName string
	Data     []byte
}

// ConvertPdfToImage renders page 1 of the PDF. dpi 288 matches a 4x scale of
// the 72 dpi PDF user space.
func ConvertPdfToImage(pdfData []byte, fileName string, dpi float64) (*Image, error) {
	if len(pdfData) == 0 {
		return nil, ErrEmptyPDF
	}

	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page 1: %w", err)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &Image{FileName: PreviewName(fileName), Data: buf.Bytes()}, nil
}

// PreviewName swaps the file extension for .png.
func PreviewName(fileName string) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	if base == "" {
		base = "resume"
	}
	return base + ".png"
}
