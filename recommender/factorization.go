package recommender

import (
	"fmt"
	"math/rand"

	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/mat"

	"recdiv/interaction"
)

// FactorizationConfig holds the hyperparameters of the SGD-trained
// factorization scorer.
type FactorizationConfig struct {
	Factors        int
	Epochs         int
	LearningRate   float64
	Regularization float64
	InitStdDev     float64
	Seed           int64
	ShowProgress   bool
}

// DefaultFactorizationConfig mirrors the defaults the pipeline trains
// with.
func DefaultFactorizationConfig() FactorizationConfig {
	return FactorizationConfig{
		Factors:        10,
		Epochs:         30,
		LearningRate:   0.05,
		Regularization: 0.002,
		InitStdDev:     0.1,
		Seed:           42,
	}
}

// FactorizationScorer is a biased matrix-factorization model: each
// user and item owns a latent factor vector and a bias, trained by
// stochastic gradient descent over the observed train interactions.
// Training is seeded and fully deterministic for identical input.
type FactorizationScorer struct {
	cfg FactorizationConfig

	globalBias  float64
	userBias    []float64
	itemBias    []float64
	userFactors [][]float64
	itemFactors [][]float64
}

// NewFactorizationScorer creates an untrained scorer.
func NewFactorizationScorer(cfg FactorizationConfig) *FactorizationScorer {
	return &FactorizationScorer{cfg: cfg}
}

// Fit trains factors and biases against the train matrix.
func (f *FactorizationScorer) Fit(train *interaction.Matrix) error {
	if train == nil || train.NNZ() == 0 {
		return fmt.Errorf("factorization: train matrix is empty")
	}
	if f.cfg.Factors <= 0 {
		return fmt.Errorf("factorization: need a positive factor count, got %d", f.cfg.Factors)
	}
	if f.cfg.Epochs <= 0 {
		return fmt.Errorf("factorization: need a positive epoch count, got %d", f.cfg.Epochs)
	}

	rng := rand.New(rand.NewSource(f.cfg.Seed))

	f.globalBias = 0
	for _, v := range train.Values {
		f.globalBias += v
	}
	f.globalBias /= float64(train.NNZ())

	f.userBias = make([]float64, train.NumUsers)
	f.itemBias = make([]float64, train.NumItems)
	f.userFactors = randomFactors(rng, train.NumUsers, f.cfg.Factors, f.cfg.InitStdDev)
	f.itemFactors = randomFactors(rng, train.NumItems, f.cfg.Factors, f.cfg.InitStdDev)

	var bar *progressbar.ProgressBar
	if f.cfg.ShowProgress {
		bar = progressbar.Default(int64(f.cfg.Epochs))
	}

	lr := f.cfg.LearningRate
	reg := f.cfg.Regularization
	for epoch := 0; epoch < f.cfg.Epochs; epoch++ {
		// Visit the observed interactions in a fresh random order each
		// epoch.
		for _, idx := range rng.Perm(train.NNZ()) {
			u := train.Users[idx]
			i := train.Items[idx]
			residual := train.Values[idx] - f.score(u, i)

			f.userBias[u] += lr * (residual - reg*f.userBias[u])
			f.itemBias[i] += lr * (residual - reg*f.itemBias[i])

			pu := f.userFactors[u]
			qi := f.itemFactors[i]
			for k := range pu {
				puk := pu[k]
				pu[k] += lr * (residual*qi[k] - reg*puk)
				qi[k] += lr * (residual*puk - reg*qi[k])
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	return nil
}

// Predict scores the given (user, item) pairs. Codes outside the
// trained range fall back to the global bias, so cold IDs rank behind
// everything the model has evidence for. Side-feature matrices are
// accepted for contract compatibility and ignored by this model.
func (f *FactorizationScorer) Predict(userIDs, itemIDs []int, _, _ *mat.Dense) ([]float64, error) {
	if len(userIDs) != len(itemIDs) {
		return nil, &interaction.DimensionError{
			Op:   "factorization predict",
			Want: fmt.Sprintf("%d item IDs", len(userIDs)),
			Got:  fmt.Sprintf("%d", len(itemIDs)),
		}
	}
	if f.userFactors == nil {
		return nil, fmt.Errorf("factorization: model is not fitted")
	}

	scores := make([]float64, len(userIDs))
	for n := range userIDs {
		scores[n] = f.score(userIDs[n], itemIDs[n])
	}
	return scores, nil
}

// score computes globalBias + userBias + itemBias + <pu, qi>, with
// unknown codes contributing nothing beyond the global bias.
func (f *FactorizationScorer) score(user, item int) float64 {
	s := f.globalBias
	knownUser := user >= 0 && user < len(f.userBias)
	knownItem := item >= 0 && item < len(f.itemBias)
	if knownUser {
		s += f.userBias[user]
	}
	if knownItem {
		s += f.itemBias[item]
	}
	if knownUser && knownItem {
		pu := f.userFactors[user]
		qi := f.itemFactors[item]
		for k := range pu {
			s += pu[k] * qi[k]
		}
	}
	return s
}

// Dump returns the serializable trained state.
func (f *FactorizationScorer) Dump() *FactorizationDump {
	return &FactorizationDump{
		GlobalBias:  f.globalBias,
		UserBias:    f.userBias,
		ItemBias:    f.itemBias,
		UserFactors: f.userFactors,
		ItemFactors: f.itemFactors,
	}
}

// Load restores a trained state captured by Dump.
func (f *FactorizationScorer) Load(dump *FactorizationDump) {
	f.globalBias = dump.GlobalBias
	f.userBias = dump.UserBias
	f.itemBias = dump.ItemBias
	f.userFactors = dump.UserFactors
	f.itemFactors = dump.ItemFactors
}

// FactorizationDump is the serializable state of a trained
// factorization scorer.
type FactorizationDump struct {
	GlobalBias  float64
	UserBias    []float64
	ItemBias    []float64
	UserFactors [][]float64
	ItemFactors [][]float64
}

// randomFactors draws an n x k factor table from a centered normal
// distribution.
func randomFactors(rng *rand.Rand, n, k int, stdDev float64) [][]float64 {
	factors := make([][]float64, n)
	for i := range factors {
		row := make([]float64, k)
		for j := range row {
			row[j] = rng.NormFloat64() * stdDev
		}
		factors[i] = row
	}
	return factors
}
