package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testIntents = `{
  "intents": [
    {"tag": "greeting", "patterns": ["hello", "hi"], "responses": ["Hello!", "Hi there!"]},
    {"tag": "goodbye", "patterns": ["bye"], "responses": ["See you!"]}
  ]
}`

const testTokenizer = `{
  "class_name": "Tokenizer",
  "config": {
    "num_words": 2000,
    "filters": "!\"#$%&()*+,-./:;<=>?@[\\]^_` + "`" + `{|}~\t\n",
    "lower": true,
    "split": " ",
    "char_level": false,
    "oov_token": "<OOV>",
    "document_count": 3,
    "word_index": "{\"<OOV>\": 1, \"hello\": 2, \"bye\": 3}"
  }
}`

// One-dimensional embedding feeding a single LSTM unit whose cell input is
// the embedding value; the dense head maps a positive state to class 1.
const testModel = `{
  "format": "hchat-sequential/v1",
  "layers": [
    {"type": "embedding", "weights": [[0], [0], [1], [-1]]},
    {"type": "lstm", "units": 1, "kernel": [[0, 0, 1, 0]], "recurrent_kernel": [[0, 0, 0, 0]], "bias": [0, 0, 0, 0]},
    {"type": "dropout"},
    {"type": "dense", "activation": "softmax", "kernel": [[-1, 1]], "bias": [0, 0]}
  ]
}`

const testLabels = `["goodbye", "greeting"]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeArtifacts(t *testing.T) ArtifactConfig {
	t.Helper()
	dir := t.TempDir()
	return ArtifactConfig{
		Backend:       BackendSequence,
		IntentsPath:   writeFile(t, dir, "intents.json", testIntents),
		TokenizerPath: writeFile(t, dir, "tokenizer.json", testTokenizer),
		ModelPath:     writeFile(t, dir, "model.json", testModel),
		LabelsPath:    writeFile(t, dir, "labels.json", testLabels),
		MaxSeqLen:     DefaultMaxSeqLen,
	}
}
