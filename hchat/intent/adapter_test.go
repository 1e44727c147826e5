package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) Predict(ctx context.Context, text string) (ClassifierResult, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(ClassifierResult), args.Error(1)
}

func last(n int) int { return n - 1 }

func newTestAdapter(t *testing.T, pred Predictor) *Adapter {
	t.Helper()
	table, err := ParseDefinitions([]byte(testIntents))
	require.NoError(t, err)
	return NewAdapter(&Artifacts{Table: table, Predictor: pred}, last, zerolog.Nop())
}

func TestAdapter_ReturnsResponseForTag(t *testing.T) {
	pred := new(mockPredictor)
	pred.On("Predict", mock.Anything, "hello").Return(ClassifierResult{Tag: "greeting", Confidence: 0.9}, nil)

	resp, ok := newTestAdapter(t, pred).Classify(context.Background(), "hello")
	assert.True(t, ok)
	assert.Equal(t, "Hi there!", resp)
	pred.AssertExpectations(t)
}

func TestAdapter_UnknownTag(t *testing.T) {
	pred := new(mockPredictor)
	pred.On("Predict", mock.Anything, "weather?").Return(ClassifierResult{Tag: "weather"}, nil)

	resp, ok := newTestAdapter(t, pred).Classify(context.Background(), "weather?")
	assert.False(t, ok)
	assert.Empty(t, resp)
}

func TestAdapter_PredictorErrorIsSwallowed(t *testing.T) {
	pred := new(mockPredictor)
	pred.On("Predict", mock.Anything, mock.Anything).Return(ClassifierResult{}, errors.New("boom"))

	_, ok := newTestAdapter(t, pred).Classify(context.Background(), "hello")
	assert.False(t, ok)
}

func TestAdapter_DisabledBackend(t *testing.T) {
	a := NewAdapter(&Artifacts{Table: NewTable(nil)}, nil, zerolog.Nop())
	_, ok := a.Classify(context.Background(), "hello")
	assert.False(t, ok)
}

func TestAdapter_RandomPickStaysInRange(t *testing.T) {
	pred := new(mockPredictor)
	pred.On("Predict", mock.Anything, mock.Anything).Return(ClassifierResult{Tag: "greeting"}, nil)

	table, err := ParseDefinitions([]byte(testIntents))
	require.NoError(t, err)
	a := NewAdapter(&Artifacts{Table: table, Predictor: pred}, nil, zerolog.Nop())

	for range 50 {
		resp, ok := a.Classify(context.Background(), "hi")
		require.True(t, ok)
		assert.Contains(t, []string{"Hello!", "Hi there!"}, resp)
	}
}
