package bandfit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-arpes/peakfit"
)

func TestFermiMomentumFromMDCs(t *testing.T) {
	// k(E) = 0.5 + 0.3 E crosses E = 0 at k = 0.5.
	energies := []float64{-0.5, -0.4, -0.3, -0.2, -0.1}
	centers := make([]float64, len(energies))
	for i, e := range energies {
		centers[i] = 0.5 + 0.3*e
	}

	kf, err := FermiMomentumFromMDCs(centers, energies)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(kf, 0.5, 1e-6) {
		t.Errorf("kF = %v, want 0.5", kf)
	}
}

func TestFermiMomentumDropsNaNCenters(t *testing.T) {
	energies := []float64{-0.5, -0.4, -0.3, -0.2, -0.1}
	centers := []float64{0.35, math.NaN(), 0.41, math.NaN(), 0.47}

	kf, err := FermiMomentumFromMDCs(centers, energies)
	if err != nil {
		t.Fatal(err)
	}
	// The finite points lie on k(E) = 0.5 + 0.3 E exactly.
	if !almostEqual(kf, 0.5, 1e-6) {
		t.Errorf("kF = %v, want 0.5", kf)
	}
}

func TestFermiMomentumErrors(t *testing.T) {
	if _, err := FermiMomentumFromMDCs([]float64{1}, []float64{1, 2}); !errors.Is(err, peakfit.ErrLengthMismatch) {
		t.Errorf("length mismatch: got %v", err)
	}

	nan := math.NaN()
	if _, err := FermiMomentumFromMDCs([]float64{nan, nan, 0.4}, []float64{-1, -2, -3}); !errors.Is(err, ErrNoFiniteCenters) {
		t.Errorf("single finite center: got %v, want ErrNoFiniteCenters", err)
	}
}
