package personalize

import "math"

const (
	LikeDelta    = 0.1
	DislikeDelta = -0.05
)

// UpdateTopicScore moves the topic affinity by the like or dislike delta and
// returns the change actually applied after clamping to [-1, 1].
func UpdateTopicScore(profile *Profile, topic string, liked bool) float64 {
	delta := DislikeDelta
	if liked {
		delta = LikeDelta
	}

	profile.ensureMaps()
	current := profile.TopicScores[topic]
	next := clampScore(current + delta)
	profile.TopicScores[topic] = next

	return next - current
}

// RevertTopicScore takes back a delta previously returned by UpdateTopicScore.
func RevertTopicScore(profile *Profile, topic string, applied float64) {
	profile.ensureMaps()
	profile.TopicScores[topic] = clampScore(profile.TopicScores[topic] - applied)
}

func clampScore(v float64) float64 {
	v = math.Round(v*1e9) / 1e9
	return math.Max(MinTopicScore, math.Min(MaxTopicScore, v))
}
