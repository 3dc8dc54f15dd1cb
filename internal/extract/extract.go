package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// ErrUnsupported is returned when a payload is not a format the extractor reads.
var ErrUnsupported = errors.New("unsupported document format")

// Extractor turns raw document bytes into a structured JSON analysis.
type Extractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (json.RawMessage, error)
}

// PDFExtractor reads embedded PDF text locally, producing {"markdown": text}.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, fileName string, data []byte) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mime := http.DetectContentType(data); !strings.HasPrefix(mime, mimePDF) {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupported, fileName, mime)
	}
	text, err := extractPDF(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf %s: %w", fileName, err)
	}
	out, err := json.Marshal(map[string]string{"markdown": text})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TextOf returns the document text carried by an extraction result: the
// markdown body when present, otherwise the raw JSON.
func TextOf(raw json.RawMessage) string {
	var envelope struct {
		Markdown string `json:"markdown"`
		Data     struct {
			Markdown string `json:"markdown"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if md := strings.TrimSpace(envelope.Data.Markdown); md != "" {
			return md
		}
		if md := strings.TrimSpace(envelope.Markdown); md != "" {
			return md
		}
	}
	return string(raw)
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
