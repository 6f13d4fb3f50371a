package openai

import "fmt"

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "document_type": {
      "type": "string"
    },
    "date_issued": {
      "type": "string"
    },
    "issuer": {
      "type": "string"
    },
    "recipient": {
      "type": "string"
    },
    "part_numbers": {
      "type": "array",
      "items": {"type": "string"}
    },
    "total_amount": {
      "type": "number"
    },
    "currency": {
      "type": "string"
    },
    "line_items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "quantity": {"type": "number"},
          "unit_price": {"type": "number"},
          "total": {"type": "number"}
        },
        "required": ["description", "quantity", "unit_price", "total"],
        "additionalProperties": false
      }
    },
    "summary": {
      "type": "string"
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    },
    "extraction_notes": {
      "type": "string"
    }
  },
  "required": ["document_type", "issuer", "recipient", "total_amount", "currency", "summary", "confidence"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `You are a highly capable document extraction system. Extracted information
must exactly match the document. Do not hallucinate.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- document_type categorizes the document, e.g. "Invoice", "Purchase Order", "Delivery Note", "Quotation".
- date_issued is the issue date in ISO 8601 format. Omit the field or use "" when the document shows no date.
- issuer is the entity that produced the document; recipient is the entity it is addressed to.
- part_numbers lists every part or article number found in the document. Use [] when there are none.
- total_amount is the document total. If the document shows no amount, use 0.0.
- currency is the 3-letter ISO currency code, e.g. "USD", "EUR".
- line_items lists the individual billed rows with description, quantity, unit_price, total.
- summary is a short prose description of the document contents.
- confidence is a number from 0.0 to 1.0 indicating how certain you are about the extraction as a whole.
- extraction_notes carries caveats such as unreadable regions or ambiguous fields. Use "" when there are none.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

// buildSystemPrompt creates the extraction system prompt with the schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate, extractionResponseSchema)
}
