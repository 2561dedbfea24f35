package models

// UsageStats is the on-demand aggregate over all of a user's non-deleted
// conversations and their embedded messages. Recomputed by full scan on
// every request; there are no incremental counters.
type UsageStats struct {
	TotalConversations int `json:"total_conversations"`
	TotalMessages      int `json:"total_messages"`
	AssistantMessages  int `json:"assistant_messages"`
	TotalTokens        int `json:"total_tokens"`

	// TotalResponseSeconds sums (response_end - response_start) across
	// assistant messages that carry both stamps.
	TotalResponseSeconds float64 `json:"total_response_seconds"`

	// AvgResponseTime and TokensPerSecond are zero (not NaN/Inf) when the
	// denominators are zero, rounded to 2 decimal places.
	AvgResponseTime float64 `json:"avg_response_time"`
	TokensPerSecond float64 `json:"tokens_per_second"`
}
