package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const summaryMaxTokens = 200

// Summarize asks for a two-sentence summary, falling back to a canned one
// built from the title and the start of the body.
func (c *Client) Summarize(ctx context.Context, title, body string) string {
	prompt := fmt.Sprintf("Provide a concise 2-sentence summary of this article:\n\nTitle: %s\n\nContent: %s", title, body)

	reply, err := c.complete(ctx, prompt, summaryMaxTokens)
	if err != nil {
		if err != ErrNotConfigured {
			slog.Warn("Summary generation failed", "title", title, "error", err)
		}
		return FallbackSummary(title, body)
	}

	return strings.TrimSpace(reply)
}

func FallbackSummary(title, body string) string {
	runes := []rune(body)
	return fmt.Sprintf("This article discusses \"%s\". %s...", title, string(runes[:min(150, len(runes))]))
}
