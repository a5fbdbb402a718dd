package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
)

const (
	ExtractionPending = "pending"
	ExtractionSuccess = "success"
	ExtractionFailed  = "failed"

	// Bodies shorter than this are worth replacing with the extracted page text.
	minExtractedBodyLength = 500
)

const articleColumns = `id, topic, title, body, summary, ai_summary, source, url, image_url, published_at, read_time`

// ArticleStore handles database operations for fetched articles
type ArticleStore struct {
	db  *DB
	now func() time.Time
}

func NewArticleStore(db *DB) *ArticleStore {
	return &ArticleStore{db: db, now: time.Now}
}

// UpsertArticle stores a fetched article. Extracted bodies and generated
// summaries survive later refreshes of the same article.
func (r *ArticleStore) UpsertArticle(article feed.Article) error {
	_, err := r.db.Exec(`
		INSERT INTO articles (
			id, topic, title, body, summary, ai_summary, source, url,
			image_url, published_at, read_time, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			body = CASE WHEN articles.extraction_status = 'success' THEN articles.body ELSE excluded.body END,
			summary = CASE WHEN articles.extraction_status = 'success' THEN articles.summary ELSE excluded.summary END,
			read_time = CASE WHEN articles.extraction_status = 'success' THEN articles.read_time ELSE excluded.read_time END,
			source = excluded.source,
			image_url = excluded.image_url,
			published_at = excluded.published_at
	`, article.ID, article.Topic, article.Title, article.Body, article.Summary, article.AISummary,
		article.Source, article.URL, article.ImageURL, toUnix(article.PublishedAt), article.ReadTime,
		toUnix(r.now()))

	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

func (r *ArticleStore) GetArticle(id string) (*feed.Article, error) {
	row := r.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &article, nil
}

// GetArticlesByIDs returns the known articles in the order of ids; unknown
// IDs are skipped.
func (r *ArticleStore) GetArticlesByIDs(ids []string) ([]feed.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	articles, err := r.queryArticles(`SELECT `+articleColumns+` FROM articles WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]feed.Article, len(articles))
	for _, article := range articles {
		byID[article.ID] = article
	}

	ordered := make([]feed.Article, 0, len(articles))
	for _, id := range ids {
		if article, ok := byID[id]; ok {
			ordered = append(ordered, article)
			delete(byID, id)
		}
	}

	return ordered, nil
}

// GetRecentArticles returns the newest articles across all topics
func (r *ArticleStore) GetRecentArticles(limit int) ([]feed.Article, error) {
	return r.queryArticles(`
		SELECT `+articleColumns+`
		FROM articles
		ORDER BY published_at DESC, id
		LIMIT ?
	`, limit)
}

func (r *ArticleStore) GetArticlesByTopic(topic string, limit int) ([]feed.Article, error) {
	return r.queryArticles(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE topic = ?
		ORDER BY published_at DESC, id
		LIMIT ?
	`, topic, limit)
}

func (r *ArticleStore) GetArticleCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// GetArticlesForExtraction returns short-bodied articles of a topic that have
// not been through content extraction yet
func (r *ArticleStore) GetArticlesForExtraction(topic string, limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT id, url
		FROM articles
		WHERE topic = ?
		  AND extraction_status = ?
		  AND url != ''
		  AND length(body) < ?
		ORDER BY published_at DESC
		LIMIT ?
	`, topic, ExtractionPending, minExtractedBodyLength, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var article ArticleForExtraction
		if err := rows.Scan(&article.ID, &article.URL); err != nil {
			return nil, fmt.Errorf("failed to scan article for extraction: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleStore) UpdateExtractionStatus(id, status, errorMsg string) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET extraction_status = ?, extraction_error = ?, extracted_at = ?
		WHERE id = ?
	`, status, errorMsg, toUnix(r.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}
	return nil
}

// UpdateExtractedBody replaces the article body with extracted page text and
// recomputes the derived summary and read time
func (r *ArticleStore) UpdateExtractedBody(id, body string) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET body = ?, summary = ?, read_time = ?,
		    extraction_status = ?, extraction_error = '', extracted_at = ?
		WHERE id = ?
	`, body, feed.Truncate(body, 200), feed.ReadTime(body), ExtractionSuccess, toUnix(r.now()), id)
	if err != nil {
		return fmt.Errorf("failed to update extracted body: %w", err)
	}
	return nil
}

func (r *ArticleStore) GetArticlesWithoutSummary(limit int) ([]ArticleForSummary, error) {
	rows, err := r.db.Query(`
		SELECT id, title, body
		FROM articles
		WHERE ai_summary = ''
		ORDER BY published_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles without summary: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForSummary
	for rows.Next() {
		var article ArticleForSummary
		if err := rows.Scan(&article.ID, &article.Title, &article.Body); err != nil {
			return nil, fmt.Errorf("failed to scan article for summary: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *ArticleStore) UpdateAISummary(id, summary string) error {
	_, err := r.db.Exec(`UPDATE articles SET ai_summary = ? WHERE id = ?`, summary, id)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	return nil
}

func (r *ArticleStore) queryArticles(query string, args ...any) ([]feed.Article, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []feed.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (feed.Article, error) {
	var article feed.Article
	var publishedAt int64

	err := row.Scan(
		&article.ID, &article.Topic, &article.Title, &article.Body, &article.Summary,
		&article.AISummary, &article.Source, &article.URL, &article.ImageURL,
		&publishedAt, &article.ReadTime,
	)
	if err != nil {
		return feed.Article{}, err
	}

	article.PublishedAt = fromUnix(publishedAt)
	return article, nil
}
