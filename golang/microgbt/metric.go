package microgbt

import "math"

// Metric is a twice-differentiable loss strategy: gradient, Hessian, scalar
// loss, and the score-to-prediction transform. Grounded on
// original_source/src/metrics/metric.h; expressed here as a small interface
// rather than a tagged enum since Go has no closed sum types, matching
// spec.md's "small interface" fallback.
type Metric interface {
	// Gradients returns the per-sample gradient of the loss w.r.t. the raw score.
	Gradients(preds, y []float64) ([]float64, error)
	// Hessian returns the per-sample second derivative of the loss w.r.t. the raw score.
	Hessian(preds []float64) []float64
	// Loss returns the scalar loss over preds against y.
	Loss(preds, y []float64) (float64, error)
	// ScoreToPrediction maps a raw ensemble score to the metric's native prediction.
	ScoreToPrediction(score float64) float64
}

// LogLoss is the binary cross-entropy metric; predictions are logistic
// probabilities in (0, 1).
type LogLoss struct{}

const logLossEps = 1e-8

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Gradients returns p - y, the XGBoost-convention sign (spec.md §9 fixes
// this; original_source/src/metrics/logloss.h uses the opposite sign,
// labels - preds).
func (LogLoss) Gradients(preds, y []float64) ([]float64, error) {
	if len(preds) != len(y) {
		return nil, newError(InvalidShape, "preds has %d entries but y has %d", len(preds), len(y))
	}
	g := make([]float64, len(preds))
	for i := range preds {
		g[i] = preds[i] - y[i]
	}
	return g, nil
}

// Hessian returns p*(1-p) per sample.
func (LogLoss) Hessian(preds []float64) []float64 {
	h := make([]float64, len(preds))
	for i, p := range preds {
		h[i] = p * (1 - p)
	}
	return h
}

// Loss returns the mean clipped binary cross-entropy.
func (LogLoss) Loss(preds, y []float64) (float64, error) {
	if len(preds) != len(y) {
		return 0, newError(InvalidShape, "preds has %d entries but y has %d", len(preds), len(y))
	}
	loss := 0.0
	for i := range preds {
		p := clip(preds[i], logLossEps, 1-logLossEps)
		loss += y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
	}
	return -loss / float64(len(preds)), nil
}

// ScoreToPrediction applies the logistic function.
func (LogLoss) ScoreToPrediction(score float64) float64 {
	return sigmoid(score)
}

// RMSE is the squared-error metric with the identity score-to-prediction
// transform.
type RMSE struct{}

// Gradients returns 2*(p-y) per sample.
func (RMSE) Gradients(preds, y []float64) ([]float64, error) {
	if len(preds) != len(y) {
		return nil, newError(InvalidShape, "preds has %d entries but y has %d", len(preds), len(y))
	}
	g := make([]float64, len(preds))
	for i := range preds {
		g[i] = 2 * (preds[i] - y[i])
	}
	return g, nil
}

// Hessian is the constant vector 2.0.
func (RMSE) Hessian(preds []float64) []float64 {
	h := make([]float64, len(preds))
	for i := range h {
		h[i] = 2.0
	}
	return h
}

// Loss returns the root mean squared error.
func (RMSE) Loss(preds, y []float64) (float64, error) {
	if len(preds) != len(y) {
		return 0, newError(InvalidShape, "preds has %d entries but y has %d", len(preds), len(y))
	}
	loss := 0.0
	for i := range preds {
		d := y[i] - preds[i]
		loss += d * d
	}
	return math.Sqrt(loss / float64(len(preds))), nil
}

// ScoreToPrediction is the identity for RMSE.
func (RMSE) ScoreToPrediction(score float64) float64 {
	return score
}
