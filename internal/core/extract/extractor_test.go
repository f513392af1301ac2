package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPlainText(t *testing.T) {
	e := NewDocconvExtractor()

	rec := e.Process("notes.txt", []byte("some meeting notes"))

	assert.False(t, rec.Error)
	assert.Equal(t, "notes.txt", rec.Filename)
	assert.Equal(t, "some meeting notes", rec.Content)
	assert.Equal(t, "text/plain", rec.MimeType)
	assert.Equal(t, len("some meeting notes"), rec.Size)
}

func TestProcessCapsContentButReportsFullSize(t *testing.T) {
	e := NewDocconvExtractor()

	big := strings.Repeat("a", contentCap+500)
	rec := e.Process("big.txt", []byte(big))

	assert.Len(t, rec.Content, contentCap)
	assert.Equal(t, contentCap+500, rec.Size)
}

func TestProcessUnsupportedType(t *testing.T) {
	e := NewDocconvExtractor()

	// An ELF header sniffs as application/octet-stream.
	data := append([]byte{0x7f, 'E', 'L', 'F'}, make([]byte, 64)...)
	rec := e.Process("program.bin", data)

	assert.False(t, rec.Error)
	assert.Contains(t, rec.Content, "Unsupported file type:")
}

func TestProcessStripsPathComponents(t *testing.T) {
	e := NewDocconvExtractor()

	rec := e.Process("../../etc/passwd.txt", []byte("harmless"))
	assert.Equal(t, "passwd.txt", rec.Filename)
}

func TestDetectMimeTypePrefersExtensionForOfficeFormats(t *testing.T) {
	// Zip magic bytes; a docx is a zip container.
	data := []byte{'P', 'K', 0x03, 0x04, 0, 0, 0, 0}

	mime := detectMimeType("report.docx", data)
	assert.Equal(t, mimeDocx, mime)
}

func TestDetectMimeTypeSniffsHTML(t *testing.T) {
	mime := detectMimeType("page.whatever", []byte("<!DOCTYPE html><html><body>hi</body></html>"))
	require.Equal(t, "text/html", mime)
}
