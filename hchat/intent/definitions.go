// Package intent maps user messages to canned intent responses using a
// pre-trained classifier.
package intent

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownTag is returned when a predicted tag has no intent definition.
var ErrUnknownTag = errors.New("unknown intent tag")

//go:embed schema/intents.schema.json
var intentsSchema []byte

// Intent is one classifiable intent and its candidate replies.
type Intent struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

type document struct {
	Intents []Intent `json:"intents"`
}

// Table is an immutable tag-indexed view of the intent definitions.
type Table struct {
	intents []Intent
	byTag   map[string]int
}

// NewTable indexes intents by tag. When a tag repeats, the first definition wins.
func NewTable(intents []Intent) *Table {
	t := &Table{
		intents: make([]Intent, len(intents)),
		byTag:   make(map[string]int, len(intents)),
	}
	copy(t.intents, intents)
	for i, in := range t.intents {
		if _, seen := t.byTag[in.Tag]; !seen {
			t.byTag[in.Tag] = i
		}
	}
	return t
}

// Responses returns the replies registered for tag.
func (t *Table) Responses(tag string) ([]string, error) {
	i, ok := t.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return t.intents[i].Responses, nil
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	return len(t.intents)
}

// ParseDefinitions validates and decodes an intents document.
func ParseDefinitions(data []byte) (*Table, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("intents document is not valid JSON")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(intentsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("intents schema validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("intents schema validation errors: %s", strings.Join(problems, "; "))
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode intents: %w", err)
	}
	return NewTable(doc.Intents), nil
}

// LoadDefinitions reads an intents document from path.
func LoadDefinitions(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read intents %s: %w", path, err)
	}
	return ParseDefinitions(data)
}
