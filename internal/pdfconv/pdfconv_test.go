package pdfconv

import (
	"bytes"
	"fmt"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPagePDF builds a 200x100pt document whose pages read "page1" and "page2".
func twoPagePDF(t *testing.T) []byte {
	t.Helper()
	content := func(s string) string {
		stream := fmt.Sprintf("BT /F1 12 Tf 20 50 Td (%s) Tj ET", s)
		return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 100] /Resources << /Font << /F1 7 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 100] /Resources << /Font << /F1 7 0 R >> >> /Contents 6 0 R >>",
		content("page1"),
		content("page2"),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestConvertPdfToImage(t *testing.T) {
	img, err := ConvertPdfToImage(twoPagePDF(t), "My CV.pdf", 288)
	require.NoError(t, err)
	assert.Equal(t, "My CV.png", img.FileName)

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	require.NoError(t, err)
	// 288 dpi = PDF 좌표의 4배
	assert.Equal(t, 800, decoded.Bounds().Dx())
	assert.Equal(t, 400, decoded.Bounds().Dy())
}

func TestConvertPdfToImage_Corrupt(t *testing.T) {
	_, err := ConvertPdfToImage([]byte("not a pdf"), "cv.pdf", 72)
	assert.ErrorContains(t, err, "open pdf")
}

func TestExtractText_PDF(t *testing.T) {
	text, err := ExtractText(MimePDF, twoPagePDF(t))
	require.NoError(t, err)
	assert.Equal(t, "page1\npage2", text)
}

func TestExtractText_Plain(t *testing.T) {
	text, err := ExtractText(MimePlain, []byte("Go developer, 5 years"))
	require.NoError(t, err)
	assert.Equal(t, "Go developer, 5 years", text)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := ExtractText("image/png", []byte{0x89})
	assert.ErrorContains(t, err, "unsupported file type: image/png")
}

func TestExtractText_CorruptPDF(t *testing.T) {
	_, err := ExtractText(MimePDF, []byte("not a pdf"))
	assert.Error(t, err)
}

func TestFileSummary(t *testing.T) {
	assert.Equal(t, "Resume file: cv.pdf, Size: 1024 bytes, Type: application/pdf",
		FileSummary("cv.pdf", 1024, MimePDF))
}

func TestPreviewName(t *testing.T) {
	assert.Equal(t, "resume-2024.png", PreviewName("resume-2024.pdf"))
	assert.Equal(t, "cv.v2.png", PreviewName("cv.v2.pdf"))
	assert.Equal(t, "noext.png", PreviewName("noext"))
	assert.Equal(t, "resume.png", PreviewName(".pdf"))
}

func TestConvertPdfToImage_Empty(t *testing.T) {
	_, err := ConvertPdfToImage(nil, "a.pdf", 72)
	assert.ErrorIs(t, err, ErrEmptyPDF)
}
