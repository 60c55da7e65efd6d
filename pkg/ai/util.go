package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
	"github.com/pkoukk/tiktoken-go"
)

// ErrNoJSONObject is returned when generator output holds no {...} span.
var ErrNoJSONObject = errors.New("JSON object not found")

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// GenerateSchema creates a JSON Schema from the given Go type.
// It uses reflection to inspect the type structure and generates
// a schema suitable for describing structured AI output.
func GenerateSchema(value any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	t := reflect.TypeOf(value)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	v := reflect.New(t).Interface()
	return reflector.Reflect(v)
}

// ExtractJSONObject locates the JSON object inside free-form generator
// output. The interior of the first fenced block is preferred when present,
// otherwise the whole text is searched. The result is the exact substring
// from the first '{' to the last '}' of that candidate.
//
// Example:
//
//	doc, err := ExtractJSONObject("Here you go:\n```json\n{\"a\":1}\n```\nDone.")
//	// doc == `{"a":1}`
func ExtractJSONObject(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if m := fencedBlock.FindStringSubmatch(candidate); m != nil {
		candidate = m[1]
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONObject
	}
	return candidate[start : end+1], nil
}

// RepairJSON returns input unchanged when it is valid JSON. Otherwise it
// tries to repair the usual generator mistakes (trailing commas, single
// quotes, unquoted keys, a truncated tail) and returns the repaired text.
func RepairJSON(input string) (string, error) {
	input = strings.TrimSpace(input)
	if json.Valid([]byte(input)) {
		return input, nil
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	if !json.Valid([]byte(repaired)) {
		return "", errors.New("json repair produced invalid output")
	}
	return repaired, nil
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// CountTokens estimates the token count of text with the o200k_base
// encoding. When the encoding cannot be loaded it falls back to one token
// per four bytes.
func CountTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("o200k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return len(text)/4 + 1
	}
	return len(encoding.Encode(text, nil, nil))
}
