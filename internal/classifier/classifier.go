package classifier

import "context"

// Prediction is one (category, score) pair from a classification run.
type Prediction struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Classifier ranks the category taxonomy against a batch of documents,
// highest score first. An empty batch yields an empty ranking; ranking
// order for equal scores is stable, so callers never re-break ties.
type Classifier interface {
	Classify(ctx context.Context, docs []string) ([]Prediction, error)
}
