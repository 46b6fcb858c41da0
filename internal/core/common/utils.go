package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON cleans and unmarshals a JSON payload embedded in an LLM response
// into a type T. It tolerates surrounding prose and markdown code fences and
// accepts both object and array payloads.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	jsonStr := stripFences(response)

	objStart := strings.Index(jsonStr, "{")
	arrStart := strings.Index(jsonStr, "[")

	start := objStart
	closer := byte('}')
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start = arrStart
		closer = ']'
	}

	if start == -1 {
		return zero, fmt.Errorf("no JSON payload found in response")
	}

	end := strings.LastIndexByte(jsonStr, closer)
	if end <= start {
		return zero, fmt.Errorf("unterminated JSON payload in response")
	}
	jsonStr = jsonStr[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}

// stripFences removes a leading/trailing markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = s[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(s, "```"); i != -1 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
