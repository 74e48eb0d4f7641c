package types

import "time"

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

// ConversationMessage is one append-only entry of an assessment transcript.
type ConversationMessage struct {
	ID              int64       `db:"id" json:"id"`
	AssessmentID    int64       `db:"assessment_id" json:"assessmentId"`
	Role            MessageRole `db:"role" json:"role"`
	Content         string      `db:"content" json:"content"`
	AudioTranscript *string     `db:"audio_transcript" json:"audioTranscript"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
}

type ChatInput struct {
	AssessmentID    int64   `json:"assessmentId" form:"assessment_id"`
	Message         string  `json:"message" form:"message"`
	AudioTranscript *string `json:"audioTranscript,omitempty" form:"audio_transcript"`
}

type ChatResult struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversationId"`
}
