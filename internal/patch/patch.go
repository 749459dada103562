// Package patch applies RFC 6902 JSON Patch documents to a flat JSON working
// copy. Only the "replace" operation is applied; callers reject the others
// up front with OnlyReplace.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const OpReplace = "replace"

var (
	ErrEmpty         = errors.New("patch document is empty")
	ErrMalformed     = errors.New("patch document is malformed")
	ErrUnsupportedOp = errors.New("unsupported patch operation")
	ErrUnknownPath   = errors.New("unknown patch path")
	ErrInvalidValue  = errors.New("invalid patch value")
)

// Operation is one entry of a JSON Patch document.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

type Document []Operation

// Parse decodes a JSON Patch body. An empty body, null or [] is ErrEmpty.
func Parse(body []byte) (Document, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmpty
	}

	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc) == 0 {
		return nil, ErrEmpty
	}
	return doc, nil
}

// Replace builds a single replace operation.
func Replace(path string, value any) (Operation, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Operation{}, err
	}
	return Operation{Op: OpReplace, Path: path, Value: raw}, nil
}

// OnlyReplace reports the first operation that is not a replace.
func (d Document) OnlyReplace() error {
	for i, op := range d {
		if op.Op != OpReplace {
			return fmt.Errorf("%w: %q at index %d", ErrUnsupportedOp, op.Op, i)
		}
	}
	return nil
}

// Apply runs every replace operation, in order, on the JSON object seed.
// Paths name top-level members and match case-insensitively. The new value
// must have the same JSON type as the member it replaces.
func (d Document) Apply(seed []byte) ([]byte, error) {
	if !gjson.ValidBytes(seed) || !gjson.ParseBytes(seed).IsObject() {
		return nil, fmt.Errorf("%w: working copy is not a JSON object", ErrMalformed)
	}
	if err := d.OnlyReplace(); err != nil {
		return nil, err
	}

	result := seed
	for i, op := range d {
		key, err := resolveMember(result, op.Path)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		if len(bytes.TrimSpace(op.Value)) == 0 || !gjson.ValidBytes(op.Value) {
			return nil, fmt.Errorf("operation %d: %w: missing value for %s", i, ErrInvalidValue, op.Path)
		}
		current := gjson.GetBytes(result, escapeKey(key))
		value := gjson.ParseBytes(op.Value)
		if value.Type != current.Type {
			return nil, fmt.Errorf("operation %d: %w: %s expects %s, got %s", i, ErrInvalidValue, op.Path, current.Type, value.Type)
		}

		result, err = sjson.SetRawBytes(result, escapeKey(key), op.Value)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return result, nil
}

// resolveMember maps a JSON pointer to the matching top-level key of doc.
func resolveMember(doc []byte, pointer string) (string, error) {
	if !strings.HasPrefix(pointer, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, pointer)
	}
	token := pointer[1:]
	if token == "" || strings.Contains(token, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, pointer)
	}
	token = strings.NewReplacer("~1", "/", "~0", "~").Replace(token)

	var key string
	gjson.ParseBytes(doc).ForEach(func(k, _ gjson.Result) bool {
		if strings.EqualFold(k.String(), token) {
			key = k.String()
			return false
		}
		return true
	})
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, pointer)
	}
	return key, nil
}

// escapeKey escapes gjson/sjson path syntax in a literal member name.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
