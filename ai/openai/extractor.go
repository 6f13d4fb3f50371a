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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/paperbridge/ai"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// FeatureExtractor implements ai.FeatureExtractor using OpenAI-compatible chat APIs.
type FeatureExtractor struct {
	client llms.Model
	schema *jsonschema.Schema
	logger *slog.Logger
}

// newFeatureExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newFeatureExtractor(config *ai.Config) (*FeatureExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	// Compile the response schema once; model output is validated against it
	// before unmarshaling so schema violations surface as parse errors.
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", strings.NewReader(extractionResponseSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return nil, err
	}

	return &FeatureExtractor{
		client: client,
		schema: schema,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewFeatureExtractor creates a new feature extractor using the provided configuration.
//
// Returns ai.FeatureExtractor interface to enforce abstraction.
func NewFeatureExtractor(config *ai.Config) (ai.FeatureExtractor, error) {
	return newFeatureExtractor(config)
}

// ExtractFeatures extracts structured document features from text using an LLM.
// Model output is validated against the extraction schema before being accepted.
func (e *FeatureExtractor) ExtractFeatures(ctx context.Context, text string) (*ai.ExtractedFeatures, error) {
	systemPrompt := buildSystemPrompt()
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart("Extract information from the following document text:\n\n" + text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result ai.ExtractedFeatures
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			lastErr = ai.ErrEmptyResponse
			continue
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		var generic any
		if err := json.Unmarshal([]byte(responseText), &generic); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		if err := e.schema.Validate(generic); err != nil {
			lastErr = err
			e.logger.Warn("extractor response violates schema",
				"attempt", attempt+1,
				"err", err)
			continue
		}
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	e.logger.Debug("extracted document features",
		"document_type", result.DocumentType,
		"line_items", len(result.LineItems),
		"confidence", result.Confidence)

	return &result, nil
}
