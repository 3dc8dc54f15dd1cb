package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestInfoWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("document.pipeline", map[string]any{"document_id": "doc-1", "stage_transition": "pending->storage_uploaded"})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "document.pipeline" {
		t.Fatalf("expected msg document.pipeline, got %v", entry["msg"])
	}
	if entry["level"] != "info" {
		t.Fatalf("expected level info, got %v", entry["level"])
	}
	if entry["document_id"] != "doc-1" {
		t.Fatalf("expected document_id field, got %v", entry["document_id"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field")
	}
}

func TestErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Error("http.error", nil)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "error" {
		t.Fatalf("expected level error, got %v", entry["level"])
	}
}
