package extraction

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var pdfMagic = []byte("%PDF-")

// Document describes a local file before upload.
type Document struct {
	Path         string
	Name         string
	Size         int64
	SHA256       string
	LooksLikePDF bool
}

// Inspect reads path once to fingerprint it and check the %PDF- header.
// The service rejects non-PDF uploads itself; this is advisory.
func Inspect(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()

	h := sha256.New()
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	h.Write(head[:n])

	rest, err := io.Copy(h, f)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Document{
		Path:         path,
		Name:         filepath.Base(path),
		Size:         int64(n) + rest,
		SHA256:       hex.EncodeToString(h.Sum(nil)),
		LooksLikePDF: n == len(pdfMagic) && bytes.Equal(head, pdfMagic),
	}, nil
}
