package personalize

import (
	"maps"
	"slices"
	"time"
)

const (
	MinTopicScore        = -1.0
	MaxTopicScore        = 1.0
	InitialInterestScore = 0.3
)

type Settings struct {
	Personalization bool `json:"personalization"`
	AutoSummarize   bool `json:"autoSummarize"`
}

// Profile is the persisted reader preference state. An article ID appears in
// at most one of Liked and Disliked.
type Profile struct {
	TopicScores map[string]float64 `json:"topicScores"`
	Interests   []string           `json:"interests"`
	Liked       []string           `json:"likedArticles"`
	Disliked    []string           `json:"dislikedArticles"`
	Saved       []string           `json:"savedArticles"`
	Read        []string           `json:"readArticles"`
	Settings    Settings           `json:"settings"`
}

func NewProfile() *Profile {
	return &Profile{
		TopicScores: make(map[string]float64),
		Settings: Settings{
			Personalization: true,
		},
	}
}

func (p *Profile) Clone() *Profile {
	return &Profile{
		TopicScores: maps.Clone(p.TopicScores),
		Interests:   slices.Clone(p.Interests),
		Liked:       slices.Clone(p.Liked),
		Disliked:    slices.Clone(p.Disliked),
		Saved:       slices.Clone(p.Saved),
		Read:        slices.Clone(p.Read),
		Settings:    p.Settings,
	}
}

func (p *Profile) TopicScore(topic string) float64 {
	return p.TopicScores[topic]
}

func (p *Profile) HasInterest(topic string) bool {
	return slices.Contains(p.Interests, topic)
}

func (p *Profile) IsRead(id string) bool {
	return slices.Contains(p.Read, id)
}

func (p *Profile) IsLiked(id string) bool {
	return slices.Contains(p.Liked, id)
}

func (p *Profile) IsDisliked(id string) bool {
	return slices.Contains(p.Disliked, id)
}

func (p *Profile) IsSaved(id string) bool {
	return slices.Contains(p.Saved, id)
}

// ensureMaps fixes up profiles decoded from storage with a null score map.
func (p *Profile) ensureMaps() {
	if p.TopicScores == nil {
		p.TopicScores = make(map[string]float64)
	}
}

// repair restores the profile invariants on state decoded from storage and
// reports whether anything had to change.
func (p *Profile) repair() bool {
	p.ensureMaps()
	changed := false

	for topic, score := range p.TopicScores {
		if score < MinTopicScore || score > MaxTopicScore {
			p.TopicScores[topic] = clampScore(score)
			changed = true
		}
	}

	before := len(p.Disliked)
	p.Disliked = slices.DeleteFunc(p.Disliked, p.IsLiked)
	return changed || len(p.Disliked) != before
}

// addID appends id when absent and reports whether it did.
func addID(ids *[]string, id string) bool {
	if slices.Contains(*ids, id) {
		return false
	}
	*ids = append(*ids, id)
	return true
}

// removeID deletes id and reports whether it was present.
func removeID(ids *[]string, id string) bool {
	idx := slices.Index(*ids, id)
	if idx < 0 {
		return false
	}
	*ids = slices.Delete(*ids, idx, idx+1)
	return true
}

type Stats struct {
	ArticlesRead int    `json:"articlesRead"`
	Streak       int    `json:"streak"`
	LastReadDate string `json:"lastReadDate,omitempty"`
}

func (s *Stats) repair() bool {
	if s.ArticlesRead >= 0 && s.Streak >= 0 {
		return false
	}
	s.ArticlesRead = max(0, s.ArticlesRead)
	s.Streak = max(0, s.Streak)
	return true
}

const dateLayout = "2006-01-02"

// recordRead advances the reading streak. Consecutive local days extend it;
// a gap restarts it at 1.
func (s *Stats) recordRead(now time.Time) {
	today := now.In(time.Local).Format(dateLayout)
	if s.LastReadDate == today {
		return
	}

	yesterday := now.In(time.Local).AddDate(0, 0, -1).Format(dateLayout)
	if s.LastReadDate == yesterday {
		s.Streak++
	} else {
		s.Streak = 1
	}
	s.LastReadDate = today
}
