package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/go-porterstemmer"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultDelimiter splits message text into tokens
const DefaultDelimiter = "\n"

// NormalizeOptions controls token normalization
type NormalizeOptions struct {
	Stem bool
	// Lemmatize is accepted but has no effect.
	Lemmatize bool
	Delimiter string
}

// DefaultNormalizeOptions is the configuration the local classifier was trained with
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		Stem:      true,
		Lemmatize: false,
		Delimiter: DefaultDelimiter,
	}
}

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// Normalize splits text on the delimiter, trims and optionally stems every
// token, and joins the tokens back together without a separator. Blank
// text normalizes to the empty string.
func (tp *TextProcessor) Normalize(text string, opts NormalizeOptions) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var tokens []string
	if opts.Delimiter != "" {
		tokens = strings.Split(text, opts.Delimiter)
	} else {
		tokens = []string{text}
	}

	return strings.Join(tp.NormalizeTokens(tokens, opts), "")
}

// NormalizeTokens trims and optionally stems pre-split tokens, dropping
// tokens that are blank
func (tp *TextProcessor) NormalizeTokens(tokens []string, opts NormalizeOptions) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if opts.Stem {
			token = Stem(token)
		}
		out = append(out, token)
	}
	return out
}

// maxStemPasses bounds Stem; Porter steps never lengthen a word so a
// fixpoint is reached well before this
const maxStemPasses = 8

// Stem applies the classic Porter algorithm without case folding until the
// word stops changing, so stemming an already stemmed word is a no-op
func Stem(word string) string {
	for i := 0; i < maxStemPasses; i++ {
		stemmed := string(porterstemmer.StemWithoutLowerCasing([]rune(word)))
		if stemmed == word {
			break
		}
		word = stemmed
	}
	return word
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// SanitizeUTF8 replaces invalid UTF-8 sequences with the replacement character
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized, _, err := transform.String(runes.ReplaceIllFormed(), text)
	if err != nil {
		tp.logger.Warn("Failed to sanitize text", zap.Error(err))
		return strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.TruncateText(text, maxSize))
}

// Snippet returns the first line of text shortened to maxRunes runes
func (tp *TextProcessor) Snippet(text string, maxRunes int) string {
	text = tp.SanitizeUTF8(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:maxRunes])) + "…"
}
