// Package pdftext extracts per-page plain text from PDF files for
// downstream feature extraction and chunking.
package pdftext
