package queue

import (
	"encoding/json"
	"strings"
	"time"
)

// Message tells downstream consumers a document is ready for processing.
type Message struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	DocumentID     string `json:"document_id"`
	EnqueuedAt     string `json:"enqueued_at,omitempty"`
}

// NewMessage stamps the enqueue time.
func NewMessage(orgID, userID, documentID string) Message {
	return Message{
		OrganizationID: orgID,
		UserID:         userID,
		DocumentID:     documentID,
		EnqueuedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

// Valid reports whether the ids needed to locate the document are present.
func (m Message) Valid() bool {
	return strings.TrimSpace(m.OrganizationID) != "" && strings.TrimSpace(m.DocumentID) != ""
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
