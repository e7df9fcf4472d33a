package diagnoses

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
)

// Result is a classifier verdict. Scores holds a probability per condition.
type Result struct {
	Condition  enums.PlantCondition
	Confidence float64
	Scores     map[string]float64
}

// Classifier turns image bytes into a condition from the catalog.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Result, error)
}

// ErrEmptyImage is returned when the classifier receives no bytes.
var ErrEmptyImage = errors.New("empty image")

// MockClassifier picks a catalog condition uniformly at random and reports
// its fixed confidence. It stands in for a trained model.
type MockClassifier struct {
	mu         sync.Mutex
	rng        *rand.Rand
	conditions []Condition
}

// NewMockClassifier seeds the classifier. A zero seed uses the clock.
func NewMockClassifier(seed int64) *MockClassifier {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockClassifier{
		rng:        rand.New(rand.NewSource(seed)),
		conditions: Catalog(),
	}
}

func (m *MockClassifier) Classify(ctx context.Context, image []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(image) == 0 {
		return Result{}, ErrEmptyImage
	}

	m.mu.Lock()
	picked := m.conditions[m.rng.Intn(len(m.conditions))]
	m.mu.Unlock()

	return Result{
		Condition:  picked.ID,
		Confidence: picked.Confidence,
		Scores:     spreadScores(m.conditions, picked),
	}, nil
}

// spreadScores gives the picked condition its confidence and splits the rest
// evenly so the scores sum to one.
func spreadScores(conditions []Condition, picked Condition) map[string]float64 {
	scores := make(map[string]float64, len(conditions))
	rest := 0.0
	if len(conditions) > 1 {
		rest = (1 - picked.Confidence) / float64(len(conditions)-1)
	}
	for _, c := range conditions {
		if c.ID == picked.ID {
			scores[c.ID.String()] = picked.Confidence
			continue
		}
		scores[c.ID.String()] = rest
	}
	return scores
}
