package ai

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/lgarza/tiendita/internal/errors"
)

// ErrDecode means a completion that was asked for strict JSON did not contain a
// decodable JSON object.
var ErrDecode = errors.NewSentinel("no decodable JSON object in completion")

// DecodeObject decodes the first balanced top-level {...} span of text into v.
// Models regularly wrap the requested JSON in prose or code fences even when
// instructed not to, so anything before the first object and after its closing
// brace is ignored. Callers get ErrDecode when no such span exists or the span
// is not valid JSON for v.
func DecodeObject(text string, v any) error {
	span, ok := firstObjectSpan(text)
	if !ok {
		return errors.Wrap(ErrDecode, "no object span", slog.String("text", truncate(text)))
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return errors.Wrap(errors.Join(ErrDecode, err), "unmarshal object span", slog.String("span", truncate(span)))
	}
	return nil
}

// firstObjectSpan scans for the first balanced top-level JSON object, tracking
// string literals so braces inside them do not affect the depth.
func firstObjectSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

const maxLoggedTextLen = 200

func truncate(text string) string {
	if len(text) > maxLoggedTextLen {
		return text[:maxLoggedTextLen]
	}
	return text
}
