package acquire

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultMaxSizeMB bounds accepted document size.
const DefaultMaxSizeMB = 50

// Metadata describes a PDF at the document level.
type Metadata struct {
	PageCount int    `json:"page_count"`
	Version   string `json:"version"`
	FileSize  int64  `json:"file_size"`
}

// ValidatePDF checks that the file at path is a readable PDF within the
// size limit and has at least one page.
func ValidatePDF(path string, maxSizeMB int) error {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > int64(maxSizeMB)*1024*1024 {
		return fmt.Errorf("file size exceeds %dMB limit", maxSizeMB)
	}

	ctx, err := readContext(path)
	if err != nil {
		return fmt.Errorf("invalid PDF: %w", err)
	}
	if ctx.PageCount == 0 {
		return fmt.Errorf("PDF has no pages")
	}
	return nil
}

// ReadMetadata reads document-level metadata.
func ReadMetadata(path string) (Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("cannot access file: %w", err)
	}

	ctx, err := readContext(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read PDF: %w", err)
	}

	return Metadata{
		PageCount: ctx.PageCount,
		Version:   ctx.HeaderVersion.String(),
		FileSize:  info.Size(),
	}, nil
}

func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, err
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// FileSHA256 computes the hex SHA-256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
