package database

import (
	"time"
)

type Topic struct {
	Name          string
	Title         string
	FeedCount     int
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ArticleForExtraction struct {
	ID  string
	URL string
}

type ArticleForSummary struct {
	ID    string
	Title string
	Body  string
}
