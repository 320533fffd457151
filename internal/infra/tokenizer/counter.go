package tokenizer

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Counter counts prompt tokens with the model's BPE encoding. Without an
// encoding it estimates from runes and words.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter loads the encoding for model, then cl100k_base. Loading can fail
// offline; the counter then estimates instead.
func NewCounter(model string, logger *slog.Logger) *Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		logger.Warn("token encoding unavailable, estimating", "model", model, "error", err)
		return &Counter{}
	}
	return &Counter{enc: enc}
}

func (c *Counter) Count(text string) int {
	if c == nil || c.enc == nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate is max(runes/2, words). Hangul averages well under two runes per
// token, so this leans high for Korean text.
func Estimate(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := utf8.RuneCountInString(trimmed) / 2
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}
