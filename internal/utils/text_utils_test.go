package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name string
		text string
		opts NormalizeOptions
		want string
	}{
		{"blank", "  \n\t ", DefaultNormalizeOptions(), ""},
		{"stems tokens", "  running \n\n cats ", DefaultNormalizeOptions(), "runcat"},
		{"stemming keeps case", "Running\nCATS", DefaultNormalizeOptions(), "RunCATS"},
		{"no stemming keeps case", "Hello\n World ", NormalizeOptions{Delimiter: "\n"}, "HelloWorld"},
		{"custom delimiter", "free prizes", NormalizeOptions{Delimiter: " "}, "freeprizes"},
		{"no delimiter", "  one line  ", NormalizeOptions{}, "one line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tp.Normalize(tt.text, tt.opts))
		})
	}
}

func TestNormalize_LemmatizeHasNoEffect(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	opts := DefaultNormalizeOptions()
	plain := tp.Normalize("running\ncats", opts)
	opts.Lemmatize = true
	assert.Equal(t, plain, tp.Normalize("running\ncats", opts))
}

func TestNormalizeTokens(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	got := tp.NormalizeTokens([]string{" running ", "", "   ", "jumped"}, DefaultNormalizeOptions())
	assert.Equal(t, []string{"run", "jump"}, got)
}

func TestNormalize_Idempotent(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	opts := DefaultNormalizeOptions()

	words := []string{
		"agreed", "universities", "running", "generalizations", "happy", "relational",
		"conditional", "hopefully", "electricity", "adjustable", "controlling",
		"caresses", "ponies", "feed", "sized", "filing", "motoring", "rational",
		"oscillators", "Winner", "FREE", "claim", "prize", "txt",
	}
	for _, w := range words {
		once := tp.Normalize(w, opts)
		assert.Equal(t, once, tp.Normalize(once, opts), w)
	}

	// Multi-line text is idempotent token by token; the joined string is a
	// single new token and is not re-split
	tokens := strings.Split("Congratulations\nyou have been selected\nreply CLAIM to winning", "\n")
	once := tp.NormalizeTokens(tokens, opts)
	assert.Equal(t, once, tp.NormalizeTokens(once, opts))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "run", Stem("running"))
	assert.Equal(t, Stem("agreed"), Stem(Stem("agreed")))
	assert.Equal(t, Stem("universities"), Stem(Stem("universities")))
	assert.Equal(t, "a", Stem("a"))
}

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 10))
	assert.Equal(t, "anything", tp.TruncateText("anything", 0))

	got := tp.TruncateText("héllo world", 2)
	assert.True(t, strings.HasPrefix(got, "h\n"))
	assert.Contains(t, got, "truncated")
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "ok", tp.SanitizeUTF8("ok"))
	assert.Equal(t, "a�b", tp.SanitizeUTF8("a\xffb"))
}

func TestSnippet(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "first line", tp.Snippet("first line\nsecond line", 80))
	assert.Equal(t, "abc…", tp.Snippet("abcdef", 3))
	assert.Equal(t, "short", tp.Snippet("  short ", 3+10))
	assert.Equal(t, "", tp.Snippet("", 10))
}
