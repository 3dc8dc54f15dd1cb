package queue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		OrganizationID: "org-1",
		UserID:         "user-1",
		DocumentID:     "doc-1",
		EnqueuedAt:     "2026-01-30T22:00:00Z",
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
	if !got.Valid() {
		t.Fatalf("expected valid message")
	}
	if (Message{DocumentID: "doc-1"}).Valid() {
		t.Fatalf("message without organization must be invalid")
	}
}

type fakeSender struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSender) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSClientSend(t *testing.T) {
	api := &fakeSender{}
	c := NewSQSClientWithAPI(api, "https://sqs.example/queue")

	if err := c.Send(context.Background(), NewMessage("org-1", "user-1", "doc-1")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(api.inputs) != 1 || aws.ToString(api.inputs[0].QueueUrl) != "https://sqs.example/queue" {
		t.Fatalf("unexpected inputs %+v", api.inputs)
	}
	var body Message
	if err := json.Unmarshal([]byte(aws.ToString(api.inputs[0].MessageBody)), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.DocumentID != "doc-1" || body.OrganizationID != "org-1" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHTTPClientPostsToExtract(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/extract" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL + "/")
	if err := c.Send(context.Background(), NewMessage("org-1", "user-1", "doc-1")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.DocumentID != "doc-1" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestHTTPClientRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewHTTPClient(srv.URL).Send(context.Background(), Message{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNotifySwallowsErrors(t *testing.T) {
	api := &fakeSender{err: errors.New("down")}
	Notify(context.Background(), NewSQSClientWithAPI(api, "q"), NewMessage("o", "u", "d"))
	Notify(context.Background(), nil, Message{})
	if len(api.inputs) != 1 {
		t.Fatalf("expected one send attempt")
	}
}
