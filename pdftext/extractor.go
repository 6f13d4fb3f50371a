// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pdftext

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is the text content of a PDF file, one entry per page.
// Pages that could not be parsed carry an empty string so page numbers
// stay aligned with the source file.
type Document struct {
	Filename       string
	ChecksumSHA256 string
	Pages          []string
}

// ExtractFile reads a PDF from disk and extracts its per-page plain text.
func ExtractFile(path string) (*Document, error) {
	checksum, err := FileChecksum(path)
	if err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	if totalPages < 1 {
		return nil, ErrNoPages
	}

	pages := make([]string, totalPages)
	for number := 1; number <= totalPages; number++ {
		page := reader.Page(number)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page should not sink the document
			continue
		}
		pages[number-1] = normalizeText(text)
	}

	return &Document{
		Filename:       filepath.Base(path),
		ChecksumSHA256: checksum,
		Pages:          pages,
	}, nil
}

// FileChecksum returns the hex-encoded SHA-256 digest of a file.
func FileChecksum(path string) (string, error) {
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

// normalizeText collapses runs of whitespace into single spaces and trims
// the result. PDF text streams often carry layout artifacts that would
// otherwise pollute chunking.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
