package config

// ScoringConfig overrides the built-in attribute weight table. Keys are
// attribute names; gender_weights maps attribute -> gender -> weight.
type ScoringConfig struct {
	Weights       map[string]int            `toml:"weights"`
	GenderWeights map[string]map[string]int `toml:"gender_weights"`
}

// Merge adds overlay entries, replacing existing keys.
func (c *ScoringConfig) Merge(overlay *ScoringConfig) {
	for k, v := range overlay.Weights {
		if c.Weights == nil {
			c.Weights = make(map[string]int)
		}
		c.Weights[k] = v
	}
	for k, v := range overlay.GenderWeights {
		if c.GenderWeights == nil {
			c.GenderWeights = make(map[string]map[string]int)
		}
		c.GenderWeights[k] = v
	}
}
