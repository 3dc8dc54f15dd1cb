package documents

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
	StatusIncorrect  Status = "incorrect"
	StatusPending    Status = "pending"
)

type Type string

const (
	TypeBackgroundCheck Type = "background_check"
	TypeOther           Type = "other"
)

// Valid reports whether t is a known document type.
func (t Type) Valid() bool {
	switch t {
	case TypeBackgroundCheck, TypeOther:
		return true
	default:
		return false
	}
}

// Stage is the last pipeline step a document completed.
type Stage string

const (
	StagePending         Stage = "pending"
	StageStorageUploaded Stage = "storage_uploaded"
	StageTextExtracted   Stage = "text_extracted"
	StageGraded          Stage = "graded"
	StageFailed          Stage = "failed"
)

// previous returns the stage completed before s was attempted.
func (s Stage) previous() Stage {
	switch s {
	case StageTextExtracted:
		return StageStorageUploaded
	case StageGraded:
		return StageTextExtracted
	default:
		return StagePending
	}
}

// Document is a compliance document stored in a user's folder.
type Document struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Link             string    `json:"link"`
	Status           Status    `json:"status"`
	DocumentType     Type      `json:"document_type"`
	OrganizationID   string    `json:"organization_id"`
	FolderID         string    `json:"folder_id"`
	StorageKey       string    `json:"storage_key,omitempty"`
	ProcessedKey     string    `json:"processed_key,omitempty"`
	Stage            Stage     `json:"stage"`
	FailedStage      Stage     `json:"failed_stage,omitempty"`
	LastError        string    `json:"last_error,omitempty"`
	VerdictCorrect   *bool     `json:"verdict_correct,omitempty"`
	VerdictReasoning string    `json:"verdict_reasoning,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RawKey is where the uploaded bytes live in object storage.
func RawKey(orgID, userID, documentID string) string {
	return fmt.Sprintf("organization/%s/%s/raw_documents/%s.pdf", orgID, userID, documentID)
}

// ProcessedKeyFor maps a raw document key to its extracted-analysis key.
func ProcessedKeyFor(rawKey string) string {
	key := strings.Replace(rawKey, "/raw_documents/", "/processed_documents/", 1)
	return strings.TrimSuffix(key, ".pdf") + ".json"
}
