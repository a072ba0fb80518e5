package store

// Entry is one clipboard history row. Image blobs are never loaded on
// reads; HasImage signals their presence instead.
type Entry struct {
	ID             int64  `json:"id"`
	ContentHash    string `json:"content_hash"`
	ContentType    string `json:"content_type"`
	Content        string `json:"content,omitempty"`
	Preview        string `json:"content_preview,omitempty"`
	HasImage       bool   `json:"has_image,omitempty"`
	ImageFormat    string `json:"image_format,omitempty"`
	ImageSize      string `json:"image_size,omitempty"`
	IsURL          bool   `json:"is_url"`
	URLTitle       string `json:"url_title,omitempty"`
	URLDescription string `json:"url_description,omitempty"`
	URLContent     string `json:"url_content,omitempty"`
	URLStatusCode  int64  `json:"url_status_code,omitempty"`
	URLFetchError  string `json:"url_fetch_error,omitempty"`
	SourceApp      string `json:"source_app,omitempty"`
	CreatedAt      int64  `json:"created_at"`
	AccessedAt     int64  `json:"accessed_at"`
	AccessCount    int64  `json:"access_count"`
}

// NewEntry is the write side of an insert: identity and payload fields only.
type NewEntry struct {
	ContentHash string
	ContentType string
	Content     string
	Preview     string
	ImageData   []byte
	ImageFormat string
	ImageSize   string
	IsURL       bool
	SourceApp   string
}

// UpsertResult reports the outcome of an insert-or-touch. Created is true
// when a new row was inserted; on a touch the prior enrichment state is
// carried so the caller can decide whether to retry a failed fetch.
type UpsertResult struct {
	ID            int64
	Created       bool
	AccessCount   int64
	URLFetchError string
	URLStatusCode int64
}

// Stats are aggregate counters over the whole history.
type Stats struct {
	TotalEntries      int64            `json:"total_entries"`
	ByType            map[string]int64 `json:"by_type"`
	URLEntries        int64            `json:"url_entries"`
	PendingEnrichment int64            `json:"pending_enrichment"`
	ErroredEnrichment int64            `json:"errored_enrichment"`
	EntriesLast24h    int64            `json:"entries_last_24h"`
	ApproxBytes       int64            `json:"approx_bytes"`
	OldestCreatedAt   int64            `json:"oldest_created_at,omitempty"`
	NewestCreatedAt   int64            `json:"newest_created_at,omitempty"`
}
