package documents

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"compliance-backend/internal/extract"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/llm"
	"compliance-backend/internal/queue"
	"compliance-backend/internal/shared/metrics"
	"compliance-backend/internal/shared/storage/object"
	"compliance-backend/internal/shared/telemetry"
)

// FolderLookup finds the folder owned by a user.
type FolderLookup interface {
	GetByUser(ctx context.Context, userID string) (folders.Folder, error)
}

// Service runs the upload pipeline and serves document reads.
type Service struct {
	Repo      Repo
	Folders   FolderLookup
	Store     object.ObjectStore
	Extractor extract.Extractor
	Grader    llm.Grader
	Queue     queue.Client
	// TmpDir holds request-scoped copies of uploads; defaults to os.TempDir.
	TmpDir string
	NewID  func() string
	Now    func() time.Time
}

// UploadInput describes a document submitted by a staff member.
type UploadInput struct {
	OrganizationID string
	UserID         string
	Name           string
	DocumentType   Type
	Body           io.Reader
}

// Result is the outcome of a completed pipeline run.
type Result struct {
	Document Document
	Verdict  llm.Verdict
}

// PipelineError reports the step that failed for a persisted document.
type PipelineError struct {
	DocumentID string
	Stage      Stage
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("document %s failed at %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Upload stores, extracts and grades a document in the caller's folder.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Result, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Result{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !in.DocumentType.Valid() {
		return Result{}, fmt.Errorf("%w: invalid document_type", ErrInvalidInput)
	}
	if in.Body == nil {
		return Result{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	body := bufio.NewReader(in.Body)
	if _, err := body.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
		}
		return Result{}, fmt.Errorf("read upload: %w", err)
	}

	folder, err := s.Folders.GetByUser(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, folders.ErrNotFound) {
			return Result{}, ErrFolderNotFound
		}
		return Result{}, fmt.Errorf("load folder: %w", err)
	}

	now := s.now()
	doc := Document{
		ID:             s.newID(),
		Name:           name,
		Status:         StatusPending,
		DocumentType:   in.DocumentType,
		OrganizationID: in.OrganizationID,
		FolderID:       folder.ID,
		Stage:          StagePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Result{}, fmt.Errorf("create document: %w", err)
	}
	metrics.IncUploadStarted()

	tmpPath, err := s.writeTemp(doc.ID, body)
	if err != nil {
		return Result{}, s.fail(ctx, doc, StageStorageUploaded, err)
	}
	defer os.Remove(tmpPath)

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return Result{}, s.fail(ctx, doc, StageStorageUploaded, err)
	}

	res, err := s.run(ctx, doc, RawKey(in.OrganizationID, in.UserID, doc.ID), raw)
	var pipeErr *PipelineError
	if errors.As(err, &pipeErr) && pipeErr.Stage.previous() != StagePending {
		// The raw upload is stored, so the worker can pick the document up.
		s.notify(ctx, doc, in.UserID)
	}
	return res, err
}

// Resume re-runs the pipeline for a document from its last completed stage.
func (s *Service) Resume(ctx context.Context, orgID, documentID string) (Result, error) {
	doc, err := s.GetInOrganization(ctx, orgID, documentID)
	if err != nil {
		return Result{}, err
	}
	if doc.Stage == StagePending {
		return Result{}, ErrNotResumable
	}
	if doc.Stage == StageFailed {
		from := doc.FailedStage.previous()
		if from == StagePending {
			return Result{}, ErrNotResumable
		}
		claimed := doc
		claimed.Stage = from
		claimed.FailedStage = ""
		claimed.LastError = ""
		claimed.UpdatedAt = s.now()
		// Only one concurrent resume wins the failed -> from transition.
		if err := s.Repo.Update(ctx, claimed, StageFailed); err != nil {
			return Result{}, err
		}
		doc = claimed
	}
	telemetry.Info("document.resume", map[string]any{
		"document_id":     doc.ID,
		"organization_id": doc.OrganizationID,
		"stage":           string(doc.Stage),
	})
	return s.run(ctx, doc, doc.StorageKey, nil)
}

// ListForOrganization returns every document in orgID.
func (s *Service) ListForOrganization(ctx context.Context, orgID string) ([]Document, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	return s.Repo.ListByOrganization(ctx, orgID)
}

// GetInOrganization returns the document only if it belongs to orgID.
func (s *Service) GetInOrganization(ctx context.Context, orgID, documentID string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return Document{}, err
	}
	if doc.OrganizationID != orgID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// run advances doc through every stage after doc.Stage. raw may be nil when
// the bytes are already in object storage.
func (s *Service) run(ctx context.Context, doc Document, rawKey string, raw []byte) (Result, error) {
	var analysis []byte

	if doc.Stage == StagePending {
		err := s.step(ctx, &doc, StageStorageUploaded, func() error {
			link, err := s.Store.Put(ctx, rawKey, "application/pdf", bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("store raw document: %w", err)
			}
			doc.StorageKey = rawKey
			doc.Link = link
			return nil
		})
		if err != nil {
			return Result{}, err
		}
	}

	if doc.Stage == StageStorageUploaded {
		err := s.step(ctx, &doc, StageTextExtracted, func() error {
			if raw == nil {
				data, err := s.read(ctx, doc.StorageKey)
				if err != nil {
					return fmt.Errorf("read raw document: %w", err)
				}
				raw = data
			}
			out, err := s.Extractor.Extract(ctx, doc.ID+".pdf", raw)
			if err != nil {
				return fmt.Errorf("extract document: %w", err)
			}
			processedKey := ProcessedKeyFor(doc.StorageKey)
			if _, err := s.Store.Put(ctx, processedKey, "application/json", bytes.NewReader(out)); err != nil {
				return fmt.Errorf("store processed document: %w", err)
			}
			doc.ProcessedKey = processedKey
			analysis = out
			return nil
		})
		if err != nil {
			return Result{}, err
		}
	}

	if doc.Stage == StageTextExtracted {
		err := s.step(ctx, &doc, StageGraded, func() error {
			if analysis == nil {
				data, err := s.read(ctx, doc.ProcessedKey)
				if err != nil {
					return fmt.Errorf("read processed document: %w", err)
				}
				analysis = data
			}
			verdict, err := s.Grader.Grade(ctx, extract.TextOf(analysis))
			if err != nil {
				return fmt.Errorf("grade document: %w", err)
			}
			correct := verdict.Correct
			doc.VerdictCorrect = &correct
			doc.VerdictReasoning = verdict.Reasoning
			doc.Status = StatusIncorrect
			if correct {
				doc.Status = StatusComplete
			}
			return nil
		})
		if err != nil {
			return Result{}, err
		}
		metrics.IncUploadCompleted()
		s.notify(ctx, doc, userFromKey(doc.StorageKey))
	}

	return Result{Document: doc, Verdict: verdictOf(doc)}, nil
}

// step runs fn and, on success, persists doc at next. A failure is recorded
// on the document and returned as a *PipelineError.
func (s *Service) step(ctx context.Context, doc *Document, next Stage, fn func() error) error {
	start := time.Now()
	from := doc.Stage
	if err := fn(); err != nil {
		return s.fail(ctx, *doc, next, err)
	}
	doc.Stage = next
	doc.FailedStage = ""
	doc.LastError = ""
	doc.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, *doc, from); err != nil {
		return &PipelineError{DocumentID: doc.ID, Stage: next, Err: fmt.Errorf("persist stage: %w", err)}
	}

	elapsed := time.Since(start).Milliseconds()
	metrics.ObserveStageDurationMs(string(next), float64(elapsed))
	telemetry.Info("document.pipeline", map[string]any{
		"document_id":      doc.ID,
		"organization_id":  doc.OrganizationID,
		"stage_transition": string(from) + "->" + string(next),
		"duration_ms":      elapsed,
	})
	return nil
}

func (s *Service) fail(ctx context.Context, doc Document, stage Stage, cause error) error {
	metrics.IncUploadFailed(string(stage))
	stored := doc.Stage
	doc.Stage = StageFailed
	doc.FailedStage = stage
	doc.LastError = cause.Error()
	doc.UpdatedAt = s.now()
	if err := s.Repo.Update(context.WithoutCancel(ctx), doc, stored); err != nil {
		telemetry.Error("document.fail_persist", map[string]any{"document_id": doc.ID, "error": err.Error()})
	}
	telemetry.Error("document.pipeline_failed", map[string]any{
		"document_id":     doc.ID,
		"organization_id": doc.OrganizationID,
		"failed_stage":    string(stage),
		"error":           cause.Error(),
	})
	return &PipelineError{DocumentID: doc.ID, Stage: stage, Err: cause}
}

func (s *Service) notify(ctx context.Context, doc Document, userID string) {
	queue.Notify(context.WithoutCancel(ctx), s.Queue, queue.NewMessage(doc.OrganizationID, userID, doc.ID))
}

func (s *Service) read(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrNotResumable
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Service) writeTemp(documentID string, r io.Reader) (string, error) {
	dir := s.TmpDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}
	path := filepath.Join(dir, documentID+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create tmp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write tmp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func verdictOf(doc Document) llm.Verdict {
	if doc.VerdictCorrect == nil {
		return llm.Verdict{}
	}
	return llm.Verdict{Correct: *doc.VerdictCorrect, Reasoning: doc.VerdictReasoning}
}

// userFromKey recovers the owner id from organization/{org}/{user}/raw_documents/...
func userFromKey(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) >= 3 && parts[0] == "organization" {
		return parts[2]
	}
	return ""
}
