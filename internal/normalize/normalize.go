// Package normalize holds the lossy text cleanup applied to lead fields
// before categorization. The collaborators doing the actual work (spelling
// dictionary, translation service) are injected as functions so the package
// never touches the network itself.
package normalize

import (
	"context"
	"log"
	"strings"
)

// English is the target language code for TranslateToEnglish.
const English = "en"

// SpellFunc returns the best correction for a single token. ok=false means
// no suggestion; it is a normal outcome, not an error.
type SpellFunc func(token string) (correction string, ok bool)

// TranslateFunc translates text into the target language.
type TranslateFunc func(ctx context.Context, text, target string) (string, error)

// CorrectSpelling splits text on whitespace, replaces each token with its
// suggested correction when there is one, and rejoins with single spaces.
// Original spacing is not preserved. A nil lookup leaves tokens unchanged.
func CorrectSpelling(text string, lookup SpellFunc) string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return ""
	}
	for i, tok := range tokens {
		if lookup == nil {
			break
		}
		if c, ok := lookup(tok); ok && c != "" {
			tokens[i] = c
		}
	}
	return strings.Join(tokens, " ")
}

// TranslateToEnglish returns the English translation of text. Any failure of
// the collaborator, including an empty result, yields text unchanged; errors
// are logged and never returned. Blank input is returned without a call.
func TranslateToEnglish(ctx context.Context, text string, translate TranslateFunc) string {
	out, _ := translateOrFallback(ctx, text, translate)
	return out
}

// Translation is TranslateToEnglish that also reports whether the fallback
// was taken, for callers that count fallbacks.
func Translation(ctx context.Context, text string, translate TranslateFunc) (out string, fellBack bool) {
	return translateOrFallback(ctx, text, translate)
}

func translateOrFallback(ctx context.Context, text string, translate TranslateFunc) (string, bool) {
	if translate == nil || strings.TrimSpace(text) == "" {
		return text, false
	}
	got, err := translate(ctx, text, English)
	if err != nil {
		log.Printf("translate: fallback to original text=%q err=%v", text, err)
		return text, true
	}
	if strings.TrimSpace(got) == "" {
		log.Printf("translate: empty result, fallback to original text=%q", text)
		return text, true
	}
	return got, false
}
