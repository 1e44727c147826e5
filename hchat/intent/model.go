package intent

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// ModelFormat identifies the exported sequential model layout.
const ModelFormat = "hchat-sequential/v1"

// layerSpec is one exported Keras layer. Kernels are stored [in][out] as
// Keras keeps them; LSTM gates are packed in i, f, c, o order.
type layerSpec struct {
	Type                string      `json:"type"`
	Units               int         `json:"units,omitempty"`
	Activation          string      `json:"activation,omitempty"`
	RecurrentActivation string      `json:"recurrent_activation,omitempty"`
	ReturnSequences     bool        `json:"return_sequences,omitempty"`
	Weights             [][]float64 `json:"weights,omitempty"`
	Kernel              [][]float64 `json:"kernel,omitempty"`
	RecurrentKernel     [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias                []float64   `json:"bias,omitempty"`
}

type modelJSON struct {
	Format string      `json:"format"`
	Layers []layerSpec `json:"layers"`
}

// layer transforms a (timesteps x features) activation matrix.
type layer interface {
	forward(x *mat.Dense) *mat.Dense
	outputDim() int
}

// SequenceModel runs inference for an embedding -> LSTM -> dense stack.
// It is read-only after loading and safe for concurrent use.
type SequenceModel struct {
	embedding *mat.Dense
	layers    []layer
}

// ParseModel decodes and shape-checks an exported model.
func ParseModel(data []byte) (*SequenceModel, error) {
	var raw modelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if raw.Format != ModelFormat {
		return nil, fmt.Errorf("unsupported model format %q", raw.Format)
	}
	if len(raw.Layers) == 0 || raw.Layers[0].Type != "embedding" {
		return nil, fmt.Errorf("model must start with an embedding layer")
	}

	embedding, err := toDense(raw.Layers[0].Weights)
	if err != nil {
		return nil, fmt.Errorf("layer 0 (embedding): %w", err)
	}

	m := &SequenceModel{embedding: embedding}
	_, dim := embedding.Dims()
	for i, spec := range raw.Layers[1:] {
		l, err := buildLayer(spec, dim)
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i+1, spec.Type, err)
		}
		if l == nil {
			continue
		}
		m.layers = append(m.layers, l)
		dim = l.outputDim()
	}
	return m, nil
}

// LoadModel reads an exported model from path.
func LoadModel(path string) (*SequenceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	return ParseModel(data)
}

// OutputDim is the width of the final layer.
func (m *SequenceModel) OutputDim() int {
	if len(m.layers) == 0 {
		_, c := m.embedding.Dims()
		return c
	}
	return m.layers[len(m.layers)-1].outputDim()
}

// Predict returns the class scores for one padded index sequence.
func (m *SequenceModel) Predict(ids []int) ([]float64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty input sequence")
	}

	vocab, dim := m.embedding.Dims()
	x := mat.NewDense(len(ids), dim, nil)
	for t, id := range ids {
		if id < 0 || id >= vocab {
			return nil, fmt.Errorf("token index %d outside embedding of size %d", id, vocab)
		}
		x.SetRow(t, m.embedding.RawRowView(id))
	}

	for _, l := range m.layers {
		x = l.forward(x)
	}

	rows, _ := x.Dims()
	if rows != 1 {
		return nil, fmt.Errorf("model produced %d timesteps, expected a single vector", rows)
	}
	return mat.Row(nil, 0, x), nil
}

func buildLayer(spec layerSpec, inDim int) (layer, error) {
	switch spec.Type {
	case "dropout":
		// Inference-time identity.
		return nil, nil
	case "lstm":
		return newLSTM(spec, inDim)
	case "dense":
		return newDense(spec, inDim)
	default:
		return nil, fmt.Errorf("unsupported layer type")
	}
}

type lstmLayer struct {
	units           int
	kernel          *mat.Dense // in x 4u
	recurrent       *mat.Dense // u x 4u
	bias            []float64
	recurrentAct    func(float64) float64
	returnSequences bool
}

func newLSTM(spec layerSpec, inDim int) (*lstmLayer, error) {
	u := spec.Units
	if u <= 0 {
		return nil, fmt.Errorf("units must be positive")
	}
	kernel, err := toDense(spec.Kernel)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	recurrent, err := toDense(spec.RecurrentKernel)
	if err != nil {
		return nil, fmt.Errorf("recurrent_kernel: %w", err)
	}
	if err := expectDims(kernel, inDim, 4*u); err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	if err := expectDims(recurrent, u, 4*u); err != nil {
		return nil, fmt.Errorf("recurrent_kernel: %w", err)
	}
	if len(spec.Bias) != 4*u {
		return nil, fmt.Errorf("bias has %d entries, want %d", len(spec.Bias), 4*u)
	}

	switch spec.Activation {
	case "", "tanh":
	default:
		return nil, fmt.Errorf("unsupported lstm activation %q", spec.Activation)
	}
	act, err := recurrentActivation(spec.RecurrentActivation)
	if err != nil {
		return nil, err
	}

	return &lstmLayer{
		units:           u,
		kernel:          kernel,
		recurrent:       recurrent,
		bias:            spec.Bias,
		recurrentAct:    act,
		returnSequences: spec.ReturnSequences,
	}, nil
}

func (l *lstmLayer) outputDim() int { return l.units }

func (l *lstmLayer) forward(x *mat.Dense) *mat.Dense {
	steps, _ := x.Dims()
	u := l.units

	var xw mat.Dense
	xw.Mul(x, l.kernel)

	h := mat.NewDense(1, u, nil)
	c := make([]float64, u)
	var hu mat.Dense

	var out *mat.Dense
	if l.returnSequences {
		out = mat.NewDense(steps, u, nil)
	}

	for t := 0; t < steps; t++ {
		hu.Mul(h, l.recurrent)
		z := hu.RawRowView(0)
		xt := xw.RawRowView(t)

		hRow := h.RawRowView(0)
		for j := 0; j < u; j++ {
			ig := l.recurrentAct(xt[j] + z[j] + l.bias[j])
			fg := l.recurrentAct(xt[u+j] + z[u+j] + l.bias[u+j])
			cg := math.Tanh(xt[2*u+j] + z[2*u+j] + l.bias[2*u+j])
			og := l.recurrentAct(xt[3*u+j] + z[3*u+j] + l.bias[3*u+j])

			c[j] = fg*c[j] + ig*cg
			hRow[j] = og * math.Tanh(c[j])
		}
		if out != nil {
			out.SetRow(t, hRow)
		}
	}

	if out != nil {
		return out
	}
	return h
}

type denseLayer struct {
	kernel     *mat.Dense
	bias       []float64
	activation string
}

func newDense(spec layerSpec, inDim int) (*denseLayer, error) {
	kernel, err := toDense(spec.Kernel)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	_, out := kernel.Dims()
	if err := expectDims(kernel, inDim, out); err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	if len(spec.Bias) != out {
		return nil, fmt.Errorf("bias has %d entries, want %d", len(spec.Bias), out)
	}

	switch spec.Activation {
	case "", "linear", "relu", "softmax":
	default:
		return nil, fmt.Errorf("unsupported activation %q", spec.Activation)
	}

	return &denseLayer{kernel: kernel, bias: spec.Bias, activation: spec.Activation}, nil
}

func (l *denseLayer) outputDim() int {
	_, c := l.kernel.Dims()
	return c
}

func (l *denseLayer) forward(x *mat.Dense) *mat.Dense {
	var y mat.Dense
	y.Mul(x, l.kernel)

	rows, _ := y.Dims()
	for r := 0; r < rows; r++ {
		row := y.RawRowView(r)
		for j := range row {
			row[j] += l.bias[j]
		}
		switch l.activation {
		case "relu":
			for j, v := range row {
				row[j] = math.Max(0, v)
			}
		case "softmax":
			softmax(row)
		}
	}
	return &y
}

func softmax(v []float64) {
	maxV := math.Inf(-1)
	for _, x := range v {
		maxV = math.Max(maxV, x)
	}
	var sum float64
	for i, x := range v {
		v[i] = math.Exp(x - maxV)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func hardSigmoid(x float64) float64 {
	return math.Max(0, math.Min(1, 0.2*x+0.5))
}

func recurrentActivation(name string) (func(float64) float64, error) {
	switch name {
	case "", "sigmoid":
		return sigmoid, nil
	case "hard_sigmoid":
		return hardSigmoid, nil
	default:
		return nil, fmt.Errorf("unsupported recurrent activation %q", name)
	}
}

func toDense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("matrix is empty")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func expectDims(m *mat.Dense, rows, cols int) error {
	r, c := m.Dims()
	if r != rows || c != cols {
		return fmt.Errorf("shape %dx%d, want %dx%d", r, c, rows, cols)
	}
	return nil
}

// argmax returns the first index holding the maximum value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
