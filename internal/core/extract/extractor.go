// Package extract turns uploaded binaries into bounded plain text.
// Uploads are ephemeral: the binary is written to a temp file for
// extraction and removed before Process returns, success or not. Only
// the derived FileRecord is kept.
package extract

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"github.com/google/uuid"

	"github.com/markdave123-py/parley/internal/models"
)

// Extracted text is capped so one large document can't dominate the
// conversation context.
const contentCap = 10000

const (
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXls  = "application/vnd.ms-excel"
)

// DocconvExtractor converts uploads via docconv, with a direct read for
// plain-text types.
type DocconvExtractor struct {
	tmpDir string
}

// NewDocconvExtractor returns an extractor writing its temp files under
// the system temp directory.
func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{tmpDir: os.TempDir()}
}

// Process extracts text from an upload and returns the derived record.
// Unsupported types and extraction failures degrade into a record whose
// Content describes the problem, so the upload itself still succeeds.
func (e *DocconvExtractor) Process(filename string, data []byte) models.FileRecord {
	// filepath.Base strips any path components a client might smuggle in.
	cleanName := filepath.Base(filename)

	tmpPath := filepath.Join(e.tmpDir, uuid.NewString()+"_"+cleanName)
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return models.FileRecord{
			Filename: cleanName,
			Content:  fmt.Sprintf("Error processing file: %v", err),
			Error:    true,
		}
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			log.Printf("extract: failed to remove temp file %s: %v", tmpPath, err)
		}
	}()

	mimeType := detectMimeType(cleanName, data)

	var content string
	switch {
	// docconv handles pdf/docx/html; spreadsheets fall through to the
	// unsupported branch since it has no xlsx converter.
	case mimeType == mimePDF || mimeType == mimeDocx || mimeType == "text/html":
		f, err := os.Open(tmpPath)
		if err == nil {
			var res *docconv.Response
			res, err = docconv.Convert(f, mimeType, false)
			f.Close()
			if err == nil {
				content = res.Body
			}
		}
		if err != nil {
			return models.FileRecord{
				Filename: cleanName,
				Content:  fmt.Sprintf("Error processing file: %v", err),
				MimeType: mimeType,
				Error:    true,
			}
		}
	case strings.HasPrefix(mimeType, "text/"):
		content = string(data)
	default:
		content = fmt.Sprintf("Unsupported file type: %s", mimeType)
	}

	size := len(content)
	if len(content) > contentCap {
		content = content[:contentCap]
	}

	return models.FileRecord{
		Filename: cleanName,
		Content:  content,
		MimeType: mimeType,
		Size:     size,
	}
}

// detectMimeType sniffs the upload's content and falls back to the
// filename extension. Office formats are zip containers, so a sniff
// reporting zip defers to the extension.
func detectMimeType(filename string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if base, _, found := strings.Cut(sniffed, ";"); found {
		sniffed = base
	}

	if sniffed == "application/octet-stream" || sniffed == "application/zip" {
		// docconv doesn't know spreadsheet extensions.
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".xlsx":
			return mimeXlsx
		case ".xls":
			return mimeXls
		}
		if byExt := docconv.MimeTypeByExtension(filename); byExt != "application/octet-stream" {
			return byExt
		}
	}
	return sniffed
}
