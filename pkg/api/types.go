// Package api defines the messages exchanged between the host runtime and the plugin.
package api

import (
	"errors"
	"fmt"
	"math"
)

type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeBlob MessageType = "blob"
)

const redactedValue = "<redacted>"

// payloadPreviewLimit bounds how much of a string parameter is echoed in logs.
const payloadPreviewLimit = 256

// messageEnvelopeOverhead covers the JSON framing around an encoded payload.
const messageEnvelopeOverhead = 64 * 1024

// minMessageSizeLimit is the gRPC default receive size.
const minMessageSizeLimit = 4 * 1024 * 1024

var ErrBlobTooLarge = errors.New("blob exceeds the maximum attachment size")

// BlobMeta describes a file attachment.
type BlobMeta struct {
	FileName string `json:"filename"`
	MimeType string `json:"mime_type"`
}

// Message is one element of the ordered output of a tool invocation.
type Message struct {
	Type MessageType `json:"type"`
	Text string      `json:"text,omitempty"`
	Blob []byte      `json:"blob,omitempty"`
	Meta *BlobMeta   `json:"meta,omitempty"`
}

func NewTextMessage(text string) *Message {
	return &Message{Type: MessageTypeText, Text: text}
}

// NewBlobMessage builds a file attachment. maxSize <= 0 disables the size check.
func NewBlobMessage(data []byte, fileName, mimeType string, maxSize int64) (*Message, error) {
	if fileName == "" {
		return nil, errors.New("blob file name must not be empty")
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrBlobTooLarge, len(data), maxSize)
	}
	return &Message{
		Type: MessageTypeBlob,
		Blob: data,
		Meta: &BlobMeta{FileName: fileName, MimeType: mimeType},
	}, nil
}

type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GetPluginInfoRequest struct{}

type GetPluginInfoResponse struct {
	Name    string     `json:"name"`
	Version string     `json:"version"`
	Tools   []ToolInfo `json:"tools"`
}

type ValidateCredentialsRequest struct {
	Credentials map[string]string `json:"credentials"`
}

// Redacted returns a copy safe to log.
func (r *ValidateCredentialsRequest) Redacted() *ValidateCredentialsRequest {
	return &ValidateCredentialsRequest{Credentials: redactCredentials(r.Credentials)}
}

type ValidateCredentialsResponse struct {
	Valid bool `json:"valid"`
}

// InvokeToolRequest carries one tool call. Files holds binary parameters that
// cannot travel as JSON values; they take precedence over Parameters with the same name.
type InvokeToolRequest struct {
	Tool        string            `json:"tool"`
	Credentials map[string]string `json:"credentials"`
	Parameters  map[string]any    `json:"parameters,omitempty"`
	Files       map[string][]byte `json:"files,omitempty"`
}

// Arguments merges Parameters and Files into one map.
func (r *InvokeToolRequest) Arguments() map[string]any {
	args := make(map[string]any, len(r.Parameters)+len(r.Files))
	for k, v := range r.Parameters {
		args[k] = v
	}
	for k, v := range r.Files {
		args[k] = v
	}
	return args
}

// Redacted returns a copy safe to log: credentials are masked and payloads summarized.
func (r *InvokeToolRequest) Redacted() *InvokeToolRequest {
	out := &InvokeToolRequest{
		Tool:        r.Tool,
		Credentials: redactCredentials(r.Credentials),
	}
	if r.Parameters != nil {
		out.Parameters = make(map[string]any, len(r.Parameters))
		for k, v := range r.Parameters {
			out.Parameters[k] = redactValue(v)
		}
	}
	if r.Files != nil {
		out.Files = make(map[string][]byte, len(r.Files))
		for k := range r.Files {
			out.Files[k] = nil
		}
	}
	return out
}

// redactValue summarizes long strings and byte slices, descending into structured values.
func redactValue(v any) any {
	switch val := v.(type) {
	case string:
		if len(val) > payloadPreviewLimit {
			return fmt.Sprintf("<%d bytes>", len(val))
		}
		return val
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if k == "content" {
				out[k] = summarizeContent(inner)
				continue
			}
			out[k] = redactValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = redactValue(inner)
		}
		return out
	}
	return v
}

// summarizeContent hides file content regardless of its length.
func summarizeContent(v any) any {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("<%d bytes>", len(val))
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(val))
	case nil:
		return nil
	}
	return redactedValue
}

func redactCredentials(creds map[string]string) map[string]string {
	if creds == nil {
		return nil
	}
	out := make(map[string]string, len(creds))
	for k, v := range creds {
		if v != "" {
			v = redactedValue
		}
		out[k] = v
	}
	return out
}

// MessageSizeLimit returns the gRPC message size needed to carry payloadSize bytes.
// Binary payloads are base64 encoded by the JSON codec, so the limit grows by 4/3.
func MessageSizeLimit(payloadSize int64) int {
	if payloadSize < 0 {
		payloadSize = 0
	}
	if payloadSize > math.MaxInt32 {
		return math.MaxInt32
	}
	encoded := (payloadSize + 2) / 3 * 4
	limit := encoded + messageEnvelopeOverhead
	if limit < minMessageSizeLimit {
		return minMessageSizeLimit
	}
	if limit > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(limit)
}
