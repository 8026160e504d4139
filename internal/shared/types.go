package shared

// Background task types handled by cmd/worker.
const (
	TypeProcessPostImage = "post:process_image"
	TypeDeletePostImage  = "post:delete_image"
	TypeSweepPostImages  = "post:sweep_images"
)

// Worker queues, highest priority first.
const (
	QueueImages  = "images"
	QueueDefault = "default"
	QueueLow     = "low"
)

// ProcessPostImagePayload asks the worker to build the thumbnail of a post image.
type ProcessPostImagePayload struct {
	PostID int64  `json:"post_id"`
	Key    string `json:"key"`
}

// DeletePostImagePayload removes stored objects that no post references anymore.
type DeletePostImagePayload struct {
	Keys []string `json:"keys"`
}

// SweepPostImagesPayload retries images stuck in processing longer than the window.
type SweepPostImagesPayload struct {
	StaleAfterSeconds int `json:"stale_after_seconds"`
	Limit             int `json:"limit"`
}
