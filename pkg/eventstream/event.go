package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentIndexed is emitted after a document's vector
	// index has been built and persisted.
	EventTypeDocumentIndexed = "folio.document.indexed"

	// EventTypeQuestionAnswered is emitted after a question has been
	// answered and recorded.
	EventTypeQuestionAnswered = "folio.question.answered"
)

// Event is the transport-neutral envelope shared by all event types.
type Event struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	DocumentIndexed  *DocumentIndexedPayload  `json:"document_indexed,omitempty"`
	QuestionAnswered *QuestionAnsweredPayload `json:"question_answered,omitempty"`
}

// DocumentIndexedPayload describes a completed index build.
type DocumentIndexedPayload struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	DurationMs int64  `json:"duration_ms"`
}

// QuestionAnsweredPayload describes an answered question.
type QuestionAnsweredPayload struct {
	DocumentID  string `json:"document_id"`
	QuestionID  string `json:"question_id,omitempty"`
	Question    string `json:"question"`
	SourceCount int    `json:"source_count"`
	DurationMs  int64  `json:"duration_ms"`
}
