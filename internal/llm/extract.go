package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrExtract means no JSON object could be located in the model's response
// text. It is distinct from a schema error, where JSON was found but did not
// match the expected shape.
type ErrExtract struct {
	Raw string
}

func (e *ErrExtract) Error() string {
	return fmt.Sprintf("no JSON object found in model response (%d chars)", len(e.Raw))
}

// ErrSchema means the extracted JSON failed to unmarshal or validate against
// the expected structured-output contract.
type ErrSchema struct {
	Cause error
	Raw   string
}

func (e *ErrSchema) Error() string {
	return fmt.Sprintf("model response does not match expected schema: %v", e.Cause)
}

func (e *ErrSchema) Unwrap() error { return e.Cause }

// extractJSON normalizes free-form model text into the JSON object it should
// contain. It strips a single leading/trailing markdown fence, then
// defensively takes the substring between the first '{' and the last '}'.
// Best-effort tolerance for formatting noise, not a guarantee.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", &ErrExtract{Raw: text}
	}
	return text[start : end+1], nil
}

// decodeResponse extracts the JSON object from raw model text and unmarshals
// it into v. Extraction failure and schema failure surface as distinct error
// types so callers can report them separately.
func decodeResponse(raw string, v any) error {
	payload, err := extractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &ErrSchema{Cause: err, Raw: payload}
	}
	return nil
}
