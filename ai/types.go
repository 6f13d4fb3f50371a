package ai

// ExtractedFeatures is the structured output of document feature extraction.
// Field tags match the JSON schema sent to the extraction model.
type ExtractedFeatures struct {
	// DocumentType categorizes the document, e.g. "Invoice", "Purchase Order",
	// "Delivery Note", "Quotation".
	DocumentType string `json:"document_type"`

	// DateIssued is the issue date in ISO 8601 format, empty when unknown.
	DateIssued string `json:"date_issued"`

	// Issuer is the party that produced the document.
	Issuer string `json:"issuer"`

	// Recipient is the party the document is addressed to.
	Recipient string `json:"recipient"`

	// PartNumbers lists part or article numbers referenced in the document.
	PartNumbers []string `json:"part_numbers"`

	// TotalAmount is the document's total monetary amount, 0 when absent.
	TotalAmount float64 `json:"total_amount"`

	// Currency is the 3-letter ISO currency code, empty when unknown.
	Currency string `json:"currency"`

	// LineItems lists the billed rows found in the document.
	LineItems []ExtractedLineItem `json:"line_items"`

	// Summary is a short prose description of the document.
	Summary string `json:"summary"`

	// Confidence is the model's self-assessed extraction quality from 0.0 to 1.0.
	Confidence float64 `json:"confidence"`

	// ExtractionNotes carries caveats the model wants to surface, e.g.
	// unreadable regions or ambiguous fields.
	ExtractionNotes string `json:"extraction_notes"`
}

// ExtractedLineItem is a single billed row identified in a document.
type ExtractedLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}
