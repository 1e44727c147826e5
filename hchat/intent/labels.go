package intent

import (
	"encoding/json"
	"fmt"
	"os"
)

// Labels is a fitted label encoder: class index to tag, in the encoder's
// sorted class order.
type Labels []string

// Tag returns the class name for index i.
func (l Labels) Tag(i int) (string, error) {
	if i < 0 || i >= len(l) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", i, len(l))
	}
	return l[i], nil
}

// LoadLabels reads a JSON array of class names.
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels %s: %w", path, err)
	}

	var labels Labels
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels %s are empty", path)
	}
	return labels, nil
}
