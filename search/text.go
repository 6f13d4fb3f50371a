package search

import "strings"

// Stop words to drop when tokenizing queries for lexical scoring
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "at": true,
	"be": true, "does": true, "for": true, "in": true, "is": true,
	"of": true, "or": true, "the": true, "to": true, "what": true,
	"which": true,
}

// keywordTokens lowercases the query, strips non-alphanumeric characters,
// and drops stop words and tokens shorter than three characters.
func keywordTokens(query string) []string {
	raw := strings.Fields(strings.ReplaceAll(strings.ToLower(query), "/", " "))
	tokens := make([]string, 0, len(raw))

	for _, word := range raw {
		var sb strings.Builder
		for _, ch := range word {
			if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
				sb.WriteRune(ch)
			}
		}
		cleaned := sb.String()
		if len(cleaned) < 3 || stopWords[cleaned] {
			continue
		}
		tokens = append(tokens, cleaned)
	}

	return tokens
}

// overlapScore is the fraction of query tokens that appear in the content.
func overlapScore(content string, tokens []string) float32 {
	if len(tokens) == 0 {
		return 0
	}

	lower := strings.ToLower(content)
	hits := 0
	for _, token := range tokens {
		if strings.Contains(lower, token) {
			hits++
		}
	}
	return float32(hits) / float32(len(tokens))
}

func clip(value float32) float32 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
