package pdftext

import "errors"

var (
	// ErrUnreadablePDF is returned when a file cannot be parsed as a PDF.
	ErrUnreadablePDF = errors.New("unreadable PDF file")

	// ErrNoPages is returned when a PDF contains no pages.
	ErrNoPages = errors.New("PDF contains no pages")
)
