package api

type GenerateCoverRequest struct {
	Style          string `json:"style"`
	Theme          string `json:"theme"`
	Format         string `json:"format"`
	Title          string `json:"title"`
	Subtitle       string `json:"subtitle"`
	Description    string `json:"description"`
	ReferenceImage string `json:"reference_image"`
	Transparent    bool   `json:"transparent"`
	Stream         bool   `json:"stream"`
}

type ImageDTO struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
	CreatedAt   int64  `json:"created_at"`
	Prompt      string `json:"prompt"`
	Title       string `json:"title"`
	Style       string `json:"style"`
	Theme       string `json:"theme"`
	Format      string `json:"format"`
	Transparent bool   `json:"transparent"`
}

type GenerateCoverResponse struct {
	RequestID      string     `json:"request_id"`
	Status         string     `json:"status"`
	Images         []ImageDTO `json:"images,omitempty"`
	ActiveIndex    int        `json:"active_index"`
	MissingFormats []string   `json:"missing_formats,omitempty"`
}

type SnapshotResponse struct {
	Status         string     `json:"status"`
	Images         []ImageDTO `json:"images"`
	ActiveIndex    int        `json:"active_index"`
	MissingFormats []string   `json:"missing_formats,omitempty"`
	Error          string     `json:"error,omitempty"`
}

type HistoryResponse struct {
	Images []ImageDTO `json:"images"`
}

type SelectRequest struct {
	Index *int `json:"index" binding:"required"`
}

type OptionDTO struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type OptionsResponse struct {
	Styles  []OptionDTO `json:"styles"`
	Themes  []OptionDTO `json:"themes"`
	Formats []OptionDTO `json:"formats"`
}

type ErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status string   `json:"status"`
	Error  ErrorDTO `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// StreamEvent is one Server-Sent Event of a streamed generation.
type StreamEvent struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
}

type EventStart struct {
	Message   string `json:"message"`
	Formats   int    `json:"formats"`
	Timestamp int64  `json:"timestamp"`
}

type EventGenerating struct {
	Message  string `json:"message"`
	Format   string `json:"format"`
	Progress int    `json:"progress"`
}

type EventPartial struct {
	Message  string     `json:"message"`
	Format   string     `json:"format"`
	Images   []ImageDTO `json:"images"`
	Progress int        `json:"progress"`
}

type EventFormatFailed struct {
	Message  string `json:"message"`
	Format   string `json:"format"`
	Progress int    `json:"progress"`
}

type EventComplete struct {
	Message        string     `json:"message"`
	Status         string     `json:"status"`
	Images         []ImageDTO `json:"images"`
	MissingFormats []string   `json:"missing_formats,omitempty"`
}

type EventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	StatusFailed = "FAILED"

	EventTypeStart        = "start"
	EventTypeGenerating   = "generating"
	EventTypePartial      = "partial"
	EventTypeFormatFailed = "format_failed"
	EventTypeComplete     = "complete"
	EventTypeError        = "error"
)
