package agenttool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeArguments parses the JSON arguments of a tool call into a parameter
// map. Empty input yields an empty map. LLMs occasionally emit slightly broken
// JSON (trailing commas, single quotes, truncated objects); when strict
// decoding fails the payload is repaired once before giving up. The result
// must be a JSON object.
func DecodeArguments(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(raw))
		if repairErr != nil {
			return nil, fmt.Errorf("%w: invalid arguments JSON: %v", ErrValidation, err)
		}
		if err := json.Unmarshal([]byte(repaired), &v); err != nil {
			return nil, fmt.Errorf("%w: invalid arguments JSON: %v", ErrValidation, err)
		}
	}
	params, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: arguments must be a JSON object, got %s", ErrValidation, KindOf(v))
	}
	return params, nil
}
