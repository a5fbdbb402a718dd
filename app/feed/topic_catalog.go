package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// TopicCatalog holds the topic definitions loaded from <topic>.yml files.
type TopicCatalog struct {
	topicsDir string
	cache     map[string]*Config
	mu        sync.RWMutex
}

func NewTopicCatalog(topicsDir string) *TopicCatalog {
	return &TopicCatalog{
		topicsDir: topicsDir,
		cache:     make(map[string]*Config),
	}
}

func (tc *TopicCatalog) Run() error {
	if _, err := os.Stat(tc.topicsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(tc.topicsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		topic := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := tc.LoadTopic(topic)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Topic loaded", "topic", topic, "enabled", config.Settings.Enabled, "feeds", len(config.Feeds))
	}

	return nil
}

func (tc *TopicCatalog) LoadTopic(topic string) (*Config, error) {
	configFile := filepath.Join(tc.topicsDir, topic+".yml")
	topicConfig, err := tc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	topicConfig.Name = topic
	if topicConfig.Title == "" {
		topicConfig.Title = topic
	}

	if err := tc.validateConfig(topicConfig); err != nil {
		return nil, fmt.Errorf("invalid topic %s: %w", configFile, err)
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache[topicConfig.Name] = topicConfig

	return topicConfig, nil
}

func (tc *TopicCatalog) GetTopic(topic string) (*Config, error) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	topicConfig, ok := tc.cache[topic]
	if !ok {
		return nil, fmt.Errorf("topic '%s' not found", topic)
	}
	return topicConfig, nil
}

// GetTopics returns the loaded topics sorted by name.
func (tc *TopicCatalog) GetTopics() []*Config {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	topics := make([]*Config, 0, len(tc.cache))
	for _, v := range tc.cache {
		topics = append(topics, v)
	}
	slices.SortFunc(topics, func(a, b *Config) int {
		return strings.Compare(a.Name, b.Name)
	})
	return topics
}

func (tc *TopicCatalog) GetEnabledTopics() []*Config {
	var enabled []*Config
	for _, topic := range tc.GetTopics() {
		if topic.Settings.Enabled {
			enabled = append(enabled, topic)
		}
	}
	return enabled
}

func (tc *TopicCatalog) HasTopic(topic string) bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	_, ok := tc.cache[topic]
	return ok
}

func (tc *TopicCatalog) GetTopicCount() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.cache)
}

func (tc *TopicCatalog) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var topicConfig Config
	if err := yaml.Unmarshal(data, &topicConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if topicConfig.Settings.RefreshInterval == 0 {
		topicConfig.Settings.RefreshInterval = 1800
	}
	if topicConfig.Settings.MaxItems == 0 {
		topicConfig.Settings.MaxItems = 5
	}
	if topicConfig.Settings.Timeout == 0 {
		topicConfig.Settings.Timeout = 30
	}

	return &topicConfig, nil
}

func (tc *TopicCatalog) validateConfig(topicConfig *Config) error {
	if topicConfig == nil {
		return fmt.Errorf("topic config is nil")
	}

	if len(topicConfig.Feeds) == 0 {
		return fmt.Errorf("at least one feed URL is required")
	}

	for i, feedURL := range topicConfig.Feeds {
		parsed, err := url.Parse(feedURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid feed URL at index %d: %q", i, feedURL)
		}
	}

	nonNegativeFields := map[string]int{
		"refresh interval": topicConfig.Settings.RefreshInterval,
		"max items":        topicConfig.Settings.MaxItems,
		"timeout":          topicConfig.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	for i, filter := range topicConfig.Filters {
		if !slices.Contains(filterFields, filter.Field) {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
