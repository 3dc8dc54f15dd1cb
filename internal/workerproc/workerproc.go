package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"compliance-backend/internal/documents"
	"compliance-backend/internal/queue"
)

// Resumer continues a document pipeline from its last completed stage.
type Resumer interface {
	Resume(ctx context.Context, orgID, documentID string) (documents.Result, error)
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingIDs indicates a message without organization or document id.
type ErrMissingIDs struct {
	Meta       MessageMeta
	DocumentID string
}

func (e ErrMissingIDs) Error() string { return "missing organization or document id" }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	DocumentID string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process document"
	}
	return "process document: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if !msg.Valid() {
		return msg, meta, ErrMissingIDs{Meta: meta, DocumentID: msg.DocumentID}
	}
	return msg, meta, nil
}

// Permanent reports whether err means the message can never succeed and
// should be removed from the queue.
func Permanent(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		missing ErrMissingIDs
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &decode), errors.As(err, &missing):
		return true
	case errors.Is(err, documents.ErrNotFound), errors.Is(err, documents.ErrNotResumable),
		errors.Is(err, documents.ErrStageConflict):
		return true
	default:
		return false
	}
}

// HandleMessage parses a payload and resumes the referenced document.
func HandleMessage(ctx context.Context, resumer Resumer, body string) (queue.Message, error) {
	if resumer == nil {
		return queue.Message{}, errors.New("documents service not configured")
	}
	msg, _, err := ParseMessage(body)
	if err != nil {
		return msg, err
	}
	if _, err := resumer.Resume(ctx, msg.OrganizationID, msg.DocumentID); err != nil {
		return msg, ErrProcess{DocumentID: msg.DocumentID, Err: err}
	}
	return msg, nil
}
