package pipeline

import (
	"recdiv/interaction"
	"recdiv/recommender"
)

// ExperimentMetadata configures one end-to-end recommendation run:
// where the data lives, how it is split, which scorer to train and how
// the ranked output is diversified.
type ExperimentMetadata struct {
	UniqueName string

	InteractionsPath string
	CatalogPath      string

	TestSize    float64
	RandomSplit bool
	SplitSeed   int64

	ScorerType string
	recommender.FactorizationConfig

	TopN    int
	RerankK int
	Lambda  float64

	// UserCodes lists the users to serve; empty means every known
	// user.
	UserCodes []int
}

// DefaultExperimentMetadata returns a runnable baseline configuration.
func DefaultExperimentMetadata() *ExperimentMetadata {
	return &ExperimentMetadata{
		UniqueName:          "experiment",
		TestSize:            0.3,
		RandomSplit:         true,
		SplitSeed:           interaction.DefaultSeed,
		ScorerType:          "Factorization",
		FactorizationConfig: recommender.DefaultFactorizationConfig(),
		TopN:                10,
		RerankK:             5,
		Lambda:              0.5,
	}
}

// SplitPolicy translates the metadata's split fields.
func (m *ExperimentMetadata) SplitPolicy() interaction.SplitPolicy {
	return interaction.SplitPolicy{
		TestSize: m.TestSize,
		Random:   m.RandomSplit,
		Seed:     m.SplitSeed,
	}
}

// ScorerFactory builds a concrete scorer from run metadata.
type ScorerFactory func(*ExperimentMetadata) recommender.Scorer

// GetDefaultScorerFactoryDefs returns the scorer bindings selectable
// through ExperimentMetadata.ScorerType.
func GetDefaultScorerFactoryDefs() map[string]ScorerFactory {
	return map[string]ScorerFactory{

		"Factorization": func(m *ExperimentMetadata) recommender.Scorer {
			return recommender.NewFactorizationScorer(m.FactorizationConfig)
		},

		"Popularity": func(m *ExperimentMetadata) recommender.Scorer {
			return recommender.NewPopularityScorer()
		},
	}
}
