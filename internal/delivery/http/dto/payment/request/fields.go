package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/LavaJover/shvark-tron-gateway/internal/domain"
)

// Fields holds every top-level member of a JSON object body as sent.
type Fields map[string]json.RawMessage

func DecodeFields(r io.Reader) (Fields, error) {
	var fields Fields
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", domain.ErrInvalidRequest)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", domain.ErrInvalidRequest)
	}
	return fields, nil
}

// Params renders the fields as the strings the signature is computed over.
// Strings are unquoted, other values keep their JSON text, nulls are left out.
func (f Fields) Params() (map[string]string, error) {
	params := make(map[string]string, len(f))
	for key, raw := range f {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("%w: field %s", domain.ErrInvalidRequest, key)
			}
			params[key] = s
			continue
		}
		params[key] = string(raw)
	}
	return params, nil
}
