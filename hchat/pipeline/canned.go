package pipeline

import (
	"math/rand/v2"

	"github.com/ZanzyTHEbar/hybridchat/hchat/config"
)

// Picker returns an index in [0, n).
type Picker func(n int) int

// Canned is the last-resort stage. It always answers.
type Canned struct {
	responses []string
	pick      Picker
}

// NewCanned keeps the non-empty responses; with none left it uses the
// built-in replies. A nil picker selects uniformly at random.
func NewCanned(responses []string, pick Picker) *Canned {
	kept := make([]string, 0, len(responses))
	for _, r := range responses {
		if r != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, config.DefaultCannedResponses...)
	}
	if pick == nil {
		pick = rand.IntN
	}
	return &Canned{responses: kept, pick: pick}
}

// Reply picks one response.
func (c *Canned) Reply() string {
	return c.responses[c.pick(len(c.responses))]
}
