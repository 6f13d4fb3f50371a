package mock

import (
	"context"

	"github.com/poiesic/paperbridge/ai"
)

// MockFeatureExtractor is a test double for ai.FeatureExtractor.
// It allows custom behavior injection via function fields.
type MockFeatureExtractor struct {
	// ExtractFeaturesFunc is called by ExtractFeatures if set.
	// If nil, returns a fixed high-confidence invoice fixture.
	ExtractFeaturesFunc func(ctx context.Context, text string) (*ai.ExtractedFeatures, error)

	callCount int
}

// NewMockFeatureExtractor creates a mock feature extractor with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockFeatureExtractor() *MockFeatureExtractor {
	return &MockFeatureExtractor{}
}

// ExtractFeatures returns mock document features.
// Default behavior: a plausible invoice extraction that passes review.
func (m *MockFeatureExtractor) ExtractFeatures(ctx context.Context, text string) (*ai.ExtractedFeatures, error) {
	m.callCount++

	if m.ExtractFeaturesFunc != nil {
		return m.ExtractFeaturesFunc(ctx, text)
	}

	return &ai.ExtractedFeatures{
		DocumentType: "Invoice",
		DateIssued:   "2025-01-15",
		Issuer:       "Acme Corp",
		Recipient:    "Widgets Ltd",
		PartNumbers:  []string{"A-100"},
		TotalAmount:  120.0,
		Currency:     "USD",
		LineItems: []ai.ExtractedLineItem{
			{Description: "Widget assembly", Quantity: 2, UnitPrice: 60, Total: 120},
		},
		Summary:    "Invoice from Acme Corp to Widgets Ltd for widget assemblies.",
		Confidence: 0.92,
	}, nil
}

// CallCount returns the number of times ExtractFeatures was called.
func (m *MockFeatureExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockFeatureExtractor) Reset() {
	m.callCount = 0
	m.ExtractFeaturesFunc = nil
}
