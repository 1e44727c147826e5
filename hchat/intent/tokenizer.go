package intent

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultFilters are the characters a Keras Tokenizer strips by default.
const DefaultFilters = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// Tokenizer turns text into word-index sequences the way a fitted
// keras.preprocessing.text.Tokenizer does.
type Tokenizer struct {
	wordIndex map[string]int
	numWords  int // 0 means no cap
	filters   string
	lower     bool
	split     string
	oovIndex  int // 0 means no OOV token
}

type tokenizerJSON struct {
	ClassName string `json:"class_name"`
	Config    struct {
		NumWords  *int            `json:"num_words"`
		Filters   *string         `json:"filters"`
		Lower     *bool           `json:"lower"`
		Split     *string         `json:"split"`
		OOVToken  *string         `json:"oov_token"`
		WordIndex json.RawMessage `json:"word_index"`
	} `json:"config"`
}

// ParseTokenizer decodes the JSON produced by Tokenizer.to_json(). The
// word_index may be either the JSON-encoded string Keras writes or a plain object.
func ParseTokenizer(data []byte) (*Tokenizer, error) {
	var raw tokenizerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode tokenizer: %w", err)
	}
	if raw.ClassName != "" && raw.ClassName != "Tokenizer" {
		return nil, fmt.Errorf("unexpected tokenizer class %q", raw.ClassName)
	}

	wordIndex, err := decodeWordIndex(raw.Config.WordIndex)
	if err != nil {
		return nil, err
	}

	t := &Tokenizer{
		wordIndex: wordIndex,
		filters:   DefaultFilters,
		lower:     true,
		split:     " ",
	}
	if raw.Config.NumWords != nil {
		t.numWords = *raw.Config.NumWords
	}
	if raw.Config.Filters != nil {
		t.filters = *raw.Config.Filters
	}
	if raw.Config.Lower != nil {
		t.lower = *raw.Config.Lower
	}
	if raw.Config.Split != nil && *raw.Config.Split != "" {
		t.split = *raw.Config.Split
	}
	if raw.Config.OOVToken != nil {
		idx, ok := wordIndex[*raw.Config.OOVToken]
		if !ok {
			return nil, fmt.Errorf("oov token %q missing from word index", *raw.Config.OOVToken)
		}
		t.oovIndex = idx
	}
	return t, nil
}

func decodeWordIndex(raw json.RawMessage) (map[string]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("tokenizer word_index is missing")
	}

	payload := []byte(raw)
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		payload = []byte(encoded)
	}

	var index map[string]int
	if err := json.Unmarshal(payload, &index); err != nil {
		return nil, fmt.Errorf("failed to decode tokenizer word_index: %w", err)
	}
	return index, nil
}

// LoadTokenizer reads a tokenizer JSON artifact.
func LoadTokenizer(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokenizer %s: %w", path, err)
	}
	return ParseTokenizer(data)
}

// Words splits text into tokens: optional lower-casing, filter characters
// replaced by the split string, empty tokens dropped.
func (t *Tokenizer) Words(text string) []string {
	if t.lower {
		text = strings.ToLower(text)
	}
	if t.filters != "" {
		text = replaceFilters(text, t.filters, t.split)
	}

	parts := strings.Split(text, t.split)
	words := parts[:0]
	for _, p := range parts {
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

func replaceFilters(text, filters, split string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(filters, r) {
			b.WriteString(split)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Sequence maps text to word indices. Words ranked at or beyond the
// num_words cap, and unknown words, become the OOV index when one is
// configured and are dropped otherwise.
func (t *Tokenizer) Sequence(text string) []int {
	words := t.Words(text)
	seq := make([]int, 0, len(words))
	for _, w := range words {
		i, known := t.wordIndex[w]
		switch {
		case known && (t.numWords == 0 || i < t.numWords):
			seq = append(seq, i)
		case t.oovIndex != 0:
			seq = append(seq, t.oovIndex)
		}
	}
	return seq
}

// Pad fixes seq to maxLen: short sequences are left-padded with zeros and
// long ones keep their first maxLen entries.
func Pad(seq []int, maxLen int) []int {
	out := make([]int, maxLen)
	if len(seq) >= maxLen {
		copy(out, seq[:maxLen])
		return out
	}
	copy(out[maxLen-len(seq):], seq)
	return out
}
