package ai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	const doc = `{"core_claim":"x","phases":[{"id":1,"nodes":[{"id":"1-0"}]}]}`

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: doc,
			want:  doc,
		},
		{
			name:  "fenced with prose around it",
			input: "Sure, here is the analysis:\n\n```json\n" + doc + "\n```\n\nLet me know if you need more.",
			want:  doc,
		},
		{
			name:  "untagged fence",
			input: "```\n" + doc + "\n```",
			want:  doc,
		},
		{
			name:  "uppercase tag",
			input: "```JSON\n" + doc + "\n```",
			want:  doc,
		},
		{
			name:  "prose without fence",
			input: "The result is " + doc + " as requested.",
			want:  doc,
		},
		{
			name:  "nested braces keep last closing brace",
			input: `noise {"a":{"b":{"c":1}}} trailing`,
			want:  `{"a":{"b":{"c":1}}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.input)
			if err != nil {
				t.Fatalf("ExtractJSONObject() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("ExtractJSONObject() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractJSONObject_NoObject(t *testing.T) {
	inputs := []string{
		"",
		"I could not analyze this article.",
		"} reversed {",
		"```json\nnothing here\n```",
	}
	for _, input := range inputs {
		if _, err := ExtractJSONObject(input); !errors.Is(err, ErrNoJSONObject) {
			t.Fatalf("ExtractJSONObject(%q) error = %v, want ErrNoJSONObject", input, err)
		}
	}
}

func TestRepairJSON_Variants(t *testing.T) {
	type person struct {
		Name string `json:"name"`
		Age  int    `json:"age,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  person
	}{
		{
			name:  "valid json object",
			input: `{"name":"John"}`,
			want:  person{Name: "John"},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{name: 'John'}`,
			want:  person{Name: "John"},
		},
		{
			name:  "trailing comma",
			input: `{"name":"John",}`,
			want:  person{Name: "John"},
		},
		{
			name:  "missing endbracket",
			input: `{"name":"John`,
			want:  person{Name: "John"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"name\": \"John\"\n}\n",
			want:  person{Name: "John"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repaired, err := RepairJSON(tc.input)
			if err != nil {
				t.Fatalf("RepairJSON() error = %v", err)
			}
			var got person
			if err := json.Unmarshal([]byte(repaired), &got); err != nil {
				t.Fatalf("repaired output does not decode: %v (%s)", err, repaired)
			}
			if got != tc.want {
				t.Fatalf("RepairJSON() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRepairJSON_ValidInputUntouched(t *testing.T) {
	input := `{"b": [1, 2], "a": "x"}`
	got, err := RepairJSON(input)
	if err != nil {
		t.Fatalf("RepairJSON() error = %v", err)
	}
	if got != input {
		t.Fatalf("RepairJSON() = %q, want input unchanged", got)
	}
}

func TestGenerateSchema(t *testing.T) {
	type sample struct {
		Title string `json:"title"`
	}
	schema := GenerateSchema(&sample{})
	raw, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	if !strings.Contains(string(raw), `"title"`) {
		t.Fatalf("schema does not mention title: %s", raw)
	}
}
