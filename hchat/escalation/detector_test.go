package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetector_Defaults(t *testing.T) {
	d := NewDetector(nil, "")

	tests := []struct {
		input string
		want  bool
	}{
		{"i need a human support", true},
		{"let me talk to your MANAGER", true},
		{"get me a supervisor please", true},
		{"managerial tasks", true},
		{"human", false},
		{"hello", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			resp, ok := d.Detect(tt.input)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, DefaultResponse, resp)
			} else {
				assert.Empty(t, resp)
			}
		})
	}
}

func TestDetector_CustomKeywords(t *testing.T) {
	d := NewDetector([]string{" Agent ", ""}, "Routing you now.")

	resp, ok := d.Detect("real agent please")
	assert.True(t, ok)
	assert.Equal(t, "Routing you now.", resp)

	_, ok = d.Detect("manager")
	assert.False(t, ok)
}
