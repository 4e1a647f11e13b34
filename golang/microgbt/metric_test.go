package microgbt

import (
	"math"
	"testing"
)

func TestLogLossGradientAndHessian(t *testing.T) {
	preds := []float64{0.5, 0.5}
	y := []float64{0, 1}

	g, err := LogLoss{}.Gradients(preds, y)
	if err != nil {
		t.Fatalf("Gradients: %v", err)
	}
	want := []float64{0.5, -0.5}
	for i := range g {
		if math.Abs(g[i]-want[i]) > 1e-12 {
			t.Errorf("gradient[%d] = %v, want %v", i, g[i], want[i])
		}
	}

	h := LogLoss{}.Hessian(preds)
	for i, v := range h {
		if math.Abs(v-0.25) > 1e-12 {
			t.Errorf("hessian[%d] = %v, want 0.25", i, v)
		}
	}
}

func TestLogLossScoreToPredictionIsSigmoid(t *testing.T) {
	got := LogLoss{}.ScoreToPrediction(0)
	if math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("ScoreToPrediction(0) = %v, want 0.5", got)
	}
	if p1, p2 := (LogLoss{}).ScoreToPrediction(1), (LogLoss{}).ScoreToPrediction(2); p1 >= p2 {
		t.Fatalf("sigmoid should be monotone increasing: p(1)=%v p(2)=%v", p1, p2)
	}
}

func TestRMSERoundTripIsIdentity(t *testing.T) {
	if got := (RMSE{}).ScoreToPrediction(3.5); got != 3.5 {
		t.Fatalf("RMSE.ScoreToPrediction(3.5) = %v, want 3.5", got)
	}
}

func TestRMSEGradientAndHessian(t *testing.T) {
	preds := []float64{1, 2}
	y := []float64{0, 5}

	g, err := RMSE{}.Gradients(preds, y)
	if err != nil {
		t.Fatalf("Gradients: %v", err)
	}
	want := []float64{2, -6}
	for i := range g {
		if g[i] != want[i] {
			t.Errorf("gradient[%d] = %v, want %v", i, g[i], want[i])
		}
	}

	for _, v := range (RMSE{}).Hessian(preds) {
		if v != 2.0 {
			t.Errorf("RMSE hessian = %v, want 2.0", v)
		}
	}
}

func TestMetricRejectsMismatchedLengths(t *testing.T) {
	if _, err := (LogLoss{}).Gradients([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatalf("expected InvalidShape error")
	}
	if _, err := (RMSE{}).Loss([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatalf("expected InvalidShape error")
	}
}

func TestRMSEGradientVanishesWhenPredictionsMatchTarget(t *testing.T) {
	y := []float64{5, 5, 5, 5}
	preds := append([]float64(nil), y...)
	g, err := RMSE{}.Gradients(preds, y)
	if err != nil {
		t.Fatalf("Gradients: %v", err)
	}
	for i, v := range g {
		if v != 0 {
			t.Errorf("gradient[%d] = %v, want 0", i, v)
		}
	}
}
