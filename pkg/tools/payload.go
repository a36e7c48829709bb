package tools

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/scality/s3-tool-plugin/pkg/constants"
	"github.com/scality/s3-tool-plugin/pkg/osperrors"
)

// PayloadKind tags how an upload payload was supplied.
type PayloadKind int

const (
	PayloadBytes PayloadKind = iota + 1
	PayloadBase64Text
	PayloadRawText
	PayloadStructuredContent
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadBytes:
		return "bytes"
	case PayloadBase64Text:
		return "base64"
	case PayloadRawText:
		return "text"
	case PayloadStructuredContent:
		return "structured"
	default:
		return "unknown"
	}
}

// Payload is an upload body normalized to bytes.
type Payload struct {
	Kind PayloadKind
	Data []byte
}

// ResolvePayload normalizes the value of param into a Payload.
// Strings are decoded as standard base64 and kept as raw text when decoding fails.
func ResolvePayload(param string, value any) (*Payload, error) {
	switch v := value.(type) {
	case nil:
		return nil, osperrors.NewMissingParameterError(param)
	case []byte:
		if len(v) == 0 {
			return nil, osperrors.NewMissingParameterError(param)
		}
		return &Payload{Kind: PayloadBytes, Data: v}, nil
	case string:
		if v == "" {
			return nil, osperrors.NewMissingParameterError(param)
		}
		return decodeText(v), nil
	case map[string]any:
		return resolveStructured(v)
	default:
		return nil, unsupportedPayload(param, value)
	}
}

func resolveStructured(value map[string]any) (*Payload, error) {
	content, ok := value[constants.PayloadContentField]
	if !ok || content == nil || content == "" {
		return nil, &osperrors.ConfigurationError{
			Key:     constants.PayloadContentField,
			Message: fmt.Sprintf("File object missing '%s' field", constants.PayloadContentField),
		}
	}

	switch c := content.(type) {
	case string:
		return &Payload{Kind: PayloadStructuredContent, Data: decodeText(c).Data}, nil
	case []byte:
		return &Payload{Kind: PayloadStructuredContent, Data: c}, nil
	default:
		return nil, unsupportedPayload(constants.PayloadContentField, content)
	}
}

func decodeText(text string) *Payload {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil || len(decoded) == 0 {
		return &Payload{Kind: PayloadRawText, Data: []byte(text)}
	}
	return &Payload{Kind: PayloadBase64Text, Data: decoded}
}

func unsupportedPayload(param string, value any) error {
	return &osperrors.ConfigurationError{
		Key:     param,
		Message: fmt.Sprintf("Unsupported file type: %T", value),
	}
}
