package personalize

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/news-comb/app/feed"
)

var (
	ErrUnknownAction  = errors.New("unknown swipe action")
	ErrMissingArticle = errors.New("article id is required")

	// ErrCorruptValue is wrapped by Store.Load when a stored value exists but
	// cannot be decoded.
	ErrCorruptValue = errors.New("stored value cannot be decoded")
)

const (
	keyPreferences = "userPreferences"
	keyStats       = "stats"
	keyOnboarded   = "hasOnboarded"
)

// Store persists JSON-serializable values by key. Load reports whether the
// key was present and wraps ErrCorruptValue when it was but could not be
// decoded.
type Store interface {
	Save(ctx context.Context, key string, value any) error
	Load(ctx context.Context, key string, dest any) (bool, error)
	Remove(ctx context.Context, key string) error
}

// Outcome describes the effect of a committed decision.
type Outcome struct {
	Action       Action  `json:"action"`
	Changed      bool    `json:"changed"`
	Delta        float64 `json:"delta"`
	TopicScore   float64 `json:"topicScore"`
	ArticlesRead int     `json:"articlesRead"`
	HistoryLen   int     `json:"historyLength"`
}

type TopicInsight struct {
	Topic   string  `json:"topic"`
	Score   float64 `json:"score"`
	Percent int     `json:"percent"`
}

type Insights struct {
	TopTopics    []TopicInsight `json:"topTopics"`
	ArticlesRead int            `json:"articlesRead"`
	Streak       int            `json:"streak"`
}

// Session owns one profile's preference state and swipe history. Commit and
// Undo are atomic with respect to each other. Every mutation is written
// through to the store; store failures are logged and the in-memory state
// stays authoritative.
type Session struct {
	id    string
	store Store
	now   func() time.Time

	mu        sync.Mutex
	profile   *Profile
	stats     Stats
	onboarded bool
	history   *History
	seq       int64
}

func NewSession(id string, store Store, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:      id,
		store:   store,
		now:     now,
		profile: NewProfile(),
		history: NewHistory(HistoryCapacity),
	}
}

// LoadSession restores a session from the store. found is false when none of
// the profile's keys exist. Values that cannot be decoded fall back to their
// defaults, and the loaded profile is repaired so scores stay in range and no
// article is both liked and disliked. Only store failures are returned.
func LoadSession(ctx context.Context, id string, store Store, now func() time.Time) (*Session, bool, error) {
	s := NewSession(id, store, now)

	profile, prefsFound, err := loadOrDefault(ctx, store, s.key(keyPreferences), NewProfile)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load preferences: %w", err)
	}

	stats, statsFound, err := loadOrDefault(ctx, store, s.key(keyStats), func() *Stats { return &Stats{} })
	if err != nil {
		return nil, false, fmt.Errorf("failed to load stats: %w", err)
	}

	onboarded, onboardedFound, err := loadOrDefault(ctx, store, s.key(keyOnboarded), func() *bool { return new(bool) })
	if err != nil {
		return nil, false, fmt.Errorf("failed to load onboarding state: %w", err)
	}

	profileRepaired := profile.repair()
	statsRepaired := stats.repair()
	if profileRepaired || statsRepaired {
		slog.Warn("Repaired stored profile state", "profile", id)
	}

	s.profile = profile
	s.stats = *stats
	s.onboarded = *onboarded

	return s, prefsFound || statsFound || onboardedFound, nil
}

// loadOrDefault reads key into a fresh value from def. An undecodable value
// counts as present and is replaced by the default.
func loadOrDefault[T any](ctx context.Context, store Store, key string, def func() *T) (*T, bool, error) {
	dest := def()

	found, err := store.Load(ctx, key, dest)
	if isCorrupt(err) {
		slog.Warn("Discarding undecodable stored value", "key", key, "error", err)
		return def(), true, nil
	}
	if err != nil {
		return nil, false, err
	}

	return dest, found, nil
}

func isCorrupt(err error) bool {
	if err == nil {
		return false
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, ErrCorruptValue) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (s *Session) ID() string {
	return s.id
}

// Commit applies a finished swipe decision. skip is treated as dislike and
// save only bookmarks the article; save is neither marked read nor undoable.
func (s *Session) Commit(ctx context.Context, article feed.Article, action Action) (Outcome, error) {
	if action == ActionSkip {
		action = ActionDislike
	}

	switch action {
	case ActionLike, ActionDislike, ActionSave, ActionOther:
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if article.ID == "" {
		return Outcome{}, ErrMissingArticle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if action == ActionSave {
		changed := addID(&s.profile.Saved, article.ID)
		if changed {
			s.persist(ctx)
		}
		return s.outcome(action, changed, 0, article.Topic), nil
	}

	entry := HistoryEntry{
		Article: article,
		Action:  action,
	}
	entry.Article.Match = nil

	switch action {
	case ActionLike:
		entry.Added = addID(&s.profile.Liked, article.ID)
		if entry.Added {
			entry.Moved = removeID(&s.profile.Disliked, article.ID)
			entry.Delta = UpdateTopicScore(s.profile, article.Topic, true)
		}
	case ActionDislike:
		entry.Added = addID(&s.profile.Disliked, article.ID)
		if entry.Added {
			entry.Moved = removeID(&s.profile.Liked, article.ID)
			entry.Delta = UpdateTopicScore(s.profile, article.Topic, false)
		}
	}

	entry.MarkedRead = addID(&s.profile.Read, article.ID)
	s.stats.ArticlesRead++
	s.stats.recordRead(s.now())

	s.seq++
	entry.Seq = s.seq
	s.history.Push(entry)

	s.persist(ctx)

	slog.Debug("Swipe committed", "profile", s.id, "article", article.ID, "action", string(action), "delta", entry.Delta)

	return s.outcome(action, true, entry.Delta, article.Topic), nil
}

// Undo reverts the most recent committed decision. It reports false and
// changes nothing when the history is empty.
func (s *Session) Undo(ctx context.Context) (HistoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.history.Pop()
	if !ok {
		return HistoryEntry{}, false
	}

	id := entry.Article.ID

	if entry.MarkedRead {
		removeID(&s.profile.Read, id)
	}

	if entry.Added {
		switch entry.Action {
		case ActionLike:
			removeID(&s.profile.Liked, id)
			if entry.Moved {
				addID(&s.profile.Disliked, id)
			}
		case ActionDislike:
			removeID(&s.profile.Disliked, id)
			if entry.Moved {
				addID(&s.profile.Liked, id)
			}
		}
	}

	if entry.Delta != 0 {
		RevertTopicScore(s.profile, entry.Article.Topic, entry.Delta)
	}

	s.stats.ArticlesRead = max(0, s.stats.ArticlesRead-1)

	s.persist(ctx)

	slog.Debug("Swipe undone", "profile", s.id, "article", id, "action", string(entry.Action))

	return entry, true
}

// SetInterests completes onboarding: each selected topic becomes an interest
// with an initial affinity of 0.3.
func (s *Session) SetInterests(ctx context.Context, topics []string) []string {
	interests := make([]string, 0, len(topics))
	for _, topic := range topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic != "" && !slices.Contains(interests, topic) {
			interests = append(interests, topic)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Interests = interests
	for _, topic := range interests {
		s.profile.TopicScores[topic] = InitialInterestScore
	}
	s.onboarded = true

	s.persist(ctx)

	return slices.Clone(interests)
}

// SettingsPatch names the settings to change; nil fields are left alone.
type SettingsPatch struct {
	Personalization *bool `json:"personalization"`
	AutoSummarize   *bool `json:"autoSummarize"`
}

// UpdateSettings applies patch under the session lock and returns the
// resulting settings.
func (s *Session) UpdateSettings(ctx context.Context, patch SettingsPatch) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Personalization != nil {
		s.profile.Settings.Personalization = *patch.Personalization
	}
	if patch.AutoSummarize != nil {
		s.profile.Settings.AutoSummarize = *patch.AutoSummarize
	}

	s.persist(ctx)

	return s.profile.Settings
}

// ClearRead forgets read marks for articles that carry no like or dislike,
// so a reloaded feed can show them again.
func (s *Session) ClearRead(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.profile.Read)
	s.profile.Read = slices.DeleteFunc(s.profile.Read, func(id string) bool {
		return !s.profile.IsLiked(id) && !s.profile.IsDisliked(id)
	})

	cleared := before - len(s.profile.Read)
	if cleared > 0 {
		s.persist(ctx)
	}
	return cleared
}

// Reset drops all stored state for the profile and starts over.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{keyPreferences, keyStats, keyOnboarded} {
		if err := s.store.Remove(ctx, s.key(key)); err != nil {
			slog.Error("Failed to remove profile key", "profile", s.id, "key", key, "error", err)
		}
	}

	s.profile = NewProfile()
	s.stats = Stats{}
	s.onboarded = false
	s.history.Clear()
}

// Snapshot returns copies safe to use outside the session lock.
func (s *Session) Snapshot() (*Profile, Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone(), s.stats, s.onboarded
}

func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// Insights reports the five strongest topics with scores mapped onto 0-100.
func (s *Session) Insights() Insights {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics := make([]TopicInsight, 0, len(s.profile.TopicScores))
	for topic, score := range s.profile.TopicScores {
		topics = append(topics, TopicInsight{
			Topic:   topic,
			Score:   score,
			Percent: int(math.Round((score + 1) / 2 * 100)),
		})
	}

	slices.SortFunc(topics, func(a, b TopicInsight) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), strings.Compare(a.Topic, b.Topic))
	})

	if len(topics) > 5 {
		topics = topics[:5]
	}

	return Insights{
		TopTopics:    topics,
		ArticlesRead: s.stats.ArticlesRead,
		Streak:       s.stats.Streak,
	}
}

func (s *Session) outcome(action Action, changed bool, delta float64, topic string) Outcome {
	return Outcome{
		Action:       action,
		Changed:      changed,
		Delta:        delta,
		TopicScore:   s.profile.TopicScore(topic),
		ArticlesRead: s.stats.ArticlesRead,
		HistoryLen:   s.history.Len(),
	}
}

func (s *Session) persist(ctx context.Context) {
	values := map[string]any{
		keyPreferences: s.profile,
		keyStats:       s.stats,
		keyOnboarded:   s.onboarded,
	}

	for _, key := range []string{keyPreferences, keyStats, keyOnboarded} {
		if err := s.store.Save(ctx, s.key(key), values[key]); err != nil {
			slog.Error("Failed to persist profile state", "profile", s.id, "key", key, "error", err)
		}
	}
}

func (s *Session) key(name string) string {
	return s.id + ":" + name
}
