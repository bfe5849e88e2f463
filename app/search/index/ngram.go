package index

// NgramAnalyzer is the name of analyzer defined by NgramSettings
const NgramAnalyzer = "ngram_analyzer"

// NgramSettings returns settings fragment with n-gram analyzer, tokens of 2 to 50 chars.
// Descriptors opt in by returning it (or a merge with it) from Settings and
// referencing NgramAnalyzer in field mappings.
func NgramSettings() map[string]interface{} {
	return map[string]interface{}{
		"index.max_ngram_diff": 48,
		"analysis": map[string]interface{}{
			"analyzer": map[string]interface{}{
				NgramAnalyzer: map[string]interface{}{
					"tokenizer": "ngram_tokenizer",
				},
			},
			"tokenizer": map[string]interface{}{
				"ngram_tokenizer": map[string]interface{}{
					"type":        "ngram",
					"min_gram":    2,
					"max_gram":    50,
					"token_chars": []string{"letter", "digit", "punctuation", "symbol"},
				},
			},
		},
	}
}
