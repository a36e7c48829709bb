package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/scality/s3-tool-plugin/pkg/constants"
)

// Parameters holds the tool parameters of one invocation, as decoded from the host.
type Parameters map[string]any

// String returns the first non-empty value among keys, formatted as a string.
func (p Parameters) String(keys ...string) string {
	for _, key := range keys {
		switch v := p[key].(type) {
		case nil:
			continue
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []byte:
			if s := strings.TrimSpace(string(v)); s != "" {
				return s
			}
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// ResolveKey returns the object key, accepting the legacy filename alias.
func (p Parameters) ResolveKey() (string, bool) {
	key := p.String(constants.ParamKey, constants.ParamKeyAlias)
	return key, key != ""
}

// Flag reports whether any of keys holds a truthy value.
func (p Parameters) Flag(keys ...string) bool {
	for _, key := range keys {
		if isTruthy(p[key]) {
			return true
		}
	}
	return false
}

// PresignRequested reports whether the caller asked for a pre-signed URL.
func (p Parameters) PresignRequested() bool {
	return p.Flag(constants.ParamPresign, constants.ParamPresignAlias)
}

// Expiration resolves the pre-signed URL lifetime from the first set expiration key.
func (p Parameters) Expiration() time.Duration {
	var raw any
	for _, key := range []string{constants.ParamExpiration, constants.ParamExpirationAlias} {
		if v, ok := p[key]; ok && v != nil && v != "" {
			raw = v
			break
		}
	}
	return time.Duration(ParseExpiration(raw)) * time.Second
}

// ParseExpiration returns a positive number of seconds, or the default when the
// value is absent, non-numeric, fractional or not positive.
func ParseExpiration(value any) int {
	var seconds int64
	switch v := value.(type) {
	case int:
		seconds = int64(v)
	case int32:
		seconds = int64(v)
	case int64:
		seconds = v
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 {
			return constants.DefaultExpirationSecs
		}
		seconds = int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return constants.DefaultExpirationSecs
		}
		seconds = n
	default:
		return constants.DefaultExpirationSecs
	}
	if seconds <= 0 || seconds > math.MaxInt32 {
		return constants.DefaultExpirationSecs
	}
	return int(seconds)
}

func isTruthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	}
	return false
}
