package pdftext

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.bin")
	content := []byte("invoice content for checksumming")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])

	got, err := FileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileChecksum_MissingFile(t *testing.T) {
	_, err := FileChecksum(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestExtractFile_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text pretending"), 0o644))

	_, err := ExtractFile(path)
	assert.ErrorIs(t, err, ErrUnreadablePDF)
}

func TestExtractFile_MissingFile(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Invoice #42 Acme Corp", normalizeText("  Invoice \n#42\t\tAcme  Corp \n"))
	assert.Equal(t, "", normalizeText("   \n\t "))
}
