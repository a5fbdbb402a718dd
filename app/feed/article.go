package feed

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	wordsPerMinute = 200
	summaryLength  = 200
)

// ArticleID derives a stable identifier from the article URL (or GUID when
// the item has no link).
func ArticleID(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])[:16]
}

// NewArticle converts a parsed feed item into an article of the given topic.
func NewArticle(topic, source string, item Item) Article {
	body := PlainText(cmp.Or(item.Content, item.Description))
	if body == "" {
		body = item.Title
	}

	publishedAt := item.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	return Article{
		ID:          ArticleID(cmp.Or(item.Link, item.GUID)),
		Topic:       topic,
		Title:       item.Title,
		Body:        body,
		Summary:     Truncate(body, summaryLength),
		Source:      cmp.Or(source, hostOf(item.Link)),
		URL:         item.Link,
		ImageURL:    item.ImageURL,
		PublishedAt: publishedAt,
		ReadTime:    ReadTime(body),
	}
}

// PlainText strips markup and collapses whitespace.
func PlainText(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return strings.Join(strings.Fields(content), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ReadTime estimates reading minutes at 200 words per minute, at least 1.
func ReadTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	return max(minutes, 1)
}

// Truncate cuts s to at most n runes, adding "..." when something was cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
