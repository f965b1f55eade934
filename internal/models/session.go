package models

import "time"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"

	MessageTypeQuestion = "question"
	MessageTypeAnswer   = "answer"
)

// Session is one counseling thread owned by a single user.
type Session struct {
	SessionID string    `bson:"session_id" json:"session_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Title     string    `bson:"title" json:"title"`
	Purpose   string    `bson:"purpose" json:"purpose"` // general|programmes|visa|...
	Summary   string    `bson:"summary,omitempty" json:"summary,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Message is an immutable entry of a session transcript.
type Message struct {
	SessionID   string    `bson:"session_id" json:"session_id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Sender      string    `bson:"sender" json:"sender"`             // user|assistant
	MessageType string    `bson:"message_type" json:"message_type"` // question|answer
	Text        string    `bson:"message_text" json:"message_text"`
	Sources     []Source  `bson:"sources,omitempty" json:"sources,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Source is a citation attached to an answer.
type Source struct {
	Title string `bson:"title" json:"title"`
	URL   string `bson:"url" json:"url"`
}
