package local

import (
	"context"
	"fmt"
	"math"

	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/utils"
	"github.com/mikey/sms-spam-pilot/internal/vectorizer"
	"go.uber.org/zap"
)

// Sentinel scores reported instead of a model output
const (
	ScoreInferenceFailed float32 = -1
	ScoreNoModel         float32 = -2
)

// DefaultThreshold separates spam from not spam
const DefaultThreshold float32 = 0.5

// Predictor runs the pre-trained model
type Predictor interface {
	Predict(input []float32) ([]float32, error)
}

// Status describes how a prediction was obtained
type Status int

const (
	StatusOK Status = iota
	StatusNoModel
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoModel:
		return "no_model"
	default:
		return "failed"
	}
}

// Prediction is the raw output of one inference
type Prediction struct {
	Score  float32
	Status Status
}

// Classifier scores messages with the on-device model
type Classifier struct {
	model         Predictor
	vectorizer    *vectorizer.HashingVectorizer
	textProcessor *utils.TextProcessor
	normalize     utils.NormalizeOptions
	threshold     float32
	logger        *zap.Logger
}

// NewClassifier creates a new local classifier. model may be nil, in which
// case every message is reported as not spam.
func NewClassifier(
	model Predictor,
	vec *vectorizer.HashingVectorizer,
	textProcessor *utils.TextProcessor,
	threshold float32,
	logger *zap.Logger,
) *Classifier {
	if model == nil {
		logger.Warn("No local model loaded, messages will be reported as not spam")
	}
	return &Classifier{
		model:         model,
		vectorizer:    vec,
		textProcessor: textProcessor,
		normalize:     utils.DefaultNormalizeOptions(),
		threshold:     threshold,
		logger:        logger,
	}
}

// Name returns the backend name
func (c *Classifier) Name() string {
	return "local"
}

// Predict normalizes and vectorizes body and runs one inference
func (c *Classifier) Predict(body string) Prediction {
	if c.model == nil {
		return Prediction{Score: ScoreNoModel, Status: StatusNoModel}
	}

	score, err := c.infer(body)
	if err != nil {
		c.logger.Error("Local inference failed", zap.Error(err))
		return Prediction{Score: ScoreInferenceFailed, Status: StatusFailed}
	}
	return Prediction{Score: score, Status: StatusOK}
}

func (c *Classifier) infer(body string) (score float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()

	normalized := c.textProcessor.Normalize(body, c.normalize)
	vec, err := c.vectorizer.Transform([]string{normalized})
	if err != nil {
		return 0, err
	}

	out, err := c.model.Predict(vectorizer.Float32(vec))
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("model returned %d outputs, want 1", len(out))
	}
	if math.IsNaN(float64(out[0])) {
		return 0, fmt.Errorf("model returned NaN")
	}
	return out[0], nil
}

// Score implements core.Scorer. A missing model yields not spam and a
// failed inference yields unknown.
func (c *Classifier) Score(_ context.Context, body string) core.Verdict {
	return c.Verdict(c.Predict(body))
}

// Verdict maps a prediction to a verdict using the classifier threshold
func (c *Classifier) Verdict(p Prediction) core.Verdict {
	switch p.Status {
	case StatusNoModel:
		return core.VerdictNotSpam
	case StatusFailed:
		return core.VerdictUnknown
	}
	return core.VerdictFromBool(p.Score > c.threshold)
}
