package domain

// HistoryEntry is what a caller hands to the history store.
type HistoryEntry struct {
	Query  string `json:"query"`
	Answer Answer `json:"answer"`
}

// HistoryRecord is a persisted entry with its server-assigned timestamp.
type HistoryRecord struct {
	Query     string `json:"query"`
	Answer    Answer `json:"answer"`
	Timestamp int64  `json:"timestamp"`
}
