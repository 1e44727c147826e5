package intent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceModel_ForwardPass(t *testing.T) {
	m, err := ParseModel([]byte(testModel))
	require.NoError(t, err)
	assert.Equal(t, 2, m.OutputDim())

	scores, err := m.Predict([]int{0, 0, 2})
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// Gates sit at sigmoid(0); only the final step carries signal.
	c := 0.5 * math.Tanh(1)
	h := 0.5 * math.Tanh(c)
	want := 1 / (1 + math.Exp(-2*h))
	assert.InDelta(t, want, scores[1], 1e-9)
	assert.InDelta(t, 1.0, scores[0]+scores[1], 1e-9)
}

func TestSequenceModel_PaddingOnlyIsUniform(t *testing.T) {
	m, err := ParseModel([]byte(testModel))
	require.NoError(t, err)

	scores, err := m.Predict(Pad(nil, DefaultMaxSeqLen))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scores[0], 1e-9)
	assert.Equal(t, 0, argmax(scores))
}

func TestSequenceModel_HardSigmoidAndReturnSequences(t *testing.T) {
	m, err := ParseModel([]byte(`{
	  "format": "hchat-sequential/v1",
	  "layers": [
	    {"type": "embedding", "weights": [[0], [1]]},
	    {"type": "lstm", "units": 1, "return_sequences": true, "recurrent_activation": "hard_sigmoid",
	     "kernel": [[0, 0, 1, 0]], "recurrent_kernel": [[0, 0, 0, 0]], "bias": [0, 0, 0, 0]}
	  ]
	}`))
	require.NoError(t, err)

	_, err = m.Predict([]int{1, 1})
	assert.ErrorContains(t, err, "single vector")
}

func TestSequenceModel_RejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"format":     `{"format": "keras", "layers": []}`,
		"no layers":  `{"format": "hchat-sequential/v1", "layers": []}`,
		"first":      `{"format": "hchat-sequential/v1", "layers": [{"type": "dense", "kernel": [[1]], "bias": [0]}]}`,
		"ragged":     `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1, 2], [3]]}]}`,
		"lstm units": `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1]]}, {"type": "lstm", "units": 2, "kernel": [[0, 0, 1, 0]], "recurrent_kernel": [[0, 0, 0, 0]], "bias": [0, 0, 0, 0]}]}`,
		"dense in":   `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1, 1]]}, {"type": "dense", "kernel": [[1]], "bias": [0]}]}`,
		"dense bias": `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1]]}, {"type": "dense", "kernel": [[1, 1]], "bias": [0]}]}`,
		"activation": `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1]]}, {"type": "dense", "activation": "gelu", "kernel": [[1]], "bias": [0]}]}`,
		"layer":      `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1]]}, {"type": "conv1d"}]}`,
		"lstm act":   `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1]]}, {"type": "lstm", "units": 1, "activation": "relu", "kernel": [[0, 0, 1, 0]], "recurrent_kernel": [[0, 0, 0, 0]], "bias": [0, 0, 0, 0]}]}`,
		"lstm gate":  `{"format": "hchat-sequential/v1", "layers": [{"type": "embedding", "weights": [[1]]}, {"type": "lstm", "units": 1, "recurrent_activation": "softsign", "kernel": [[0, 0, 1, 0]], "recurrent_kernel": [[0, 0, 0, 0]], "bias": [0, 0, 0, 0]}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseModel([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSequenceModel_IndexOutsideEmbedding(t *testing.T) {
	m, err := ParseModel([]byte(testModel))
	require.NoError(t, err)

	_, err = m.Predict([]int{9})
	assert.Error(t, err)

	_, err = m.Predict(nil)
	assert.Error(t, err)
}

func TestDenseRelu(t *testing.T) {
	m, err := ParseModel([]byte(`{
	  "format": "hchat-sequential/v1",
	  "layers": [
	    {"type": "embedding", "weights": [[2]]},
	    {"type": "dense", "activation": "relu", "kernel": [[1, -1]], "bias": [0, 0]}
	  ]
	}`))
	require.NoError(t, err)

	scores, err := m.Predict([]int{0})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0}, scores)
}

func TestArgmaxFirstMaxWins(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{0.1, 0.7, 0.7}))
	assert.Equal(t, 0, argmax([]float64{0.5}))
}
