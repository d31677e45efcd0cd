package logging

// Standardized attribute keys shared across components so log lines stay
// greppable and the console handler can promote the interesting ones.
const (
	FieldComponent = "component"

	FieldJobID  = "job_id"
	FieldStage  = "stage"
	FieldSource = "source"

	FieldModel    = "model"
	FieldLanguage = "language"

	FieldChunkIndex = "chunk_index"
	FieldChunkCount = "chunk_count"

	FieldProgressPercent = "progress_percent"
	FieldProgressMessage = "progress_message"

	FieldBytesDownloaded = "bytes_downloaded"
	FieldBytesTotal      = "bytes_total"

	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
)
