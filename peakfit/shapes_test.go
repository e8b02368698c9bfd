package peakfit

import (
	"math"
	"testing"
)

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func TestLorentzian_EvalPeakHeight(t *testing.T) {
	m := NewLorentzian("p_")
	p := Params{
		"p_amplitude": NewParam("p_amplitude", math.Pi * 0.1), // height 1 at center
		"p_center":    NewParam("p_center", 0.5),
		"p_sigma":     NewParam("p_sigma", 0.1),
	}

	y := Eval(m, []float64{0.5}, p)
	if !almostEqual(y[0], 1.0, 1e-12) {
		t.Errorf("peak height: got %g, want 1", y[0])
	}

	// Half maximum at center ± sigma.
	y = Eval(m, []float64{0.5 + 0.1}, p)
	if !almostEqual(y[0], 0.5, 1e-12) {
		t.Errorf("half max at center+sigma: got %g, want 0.5", y[0])
	}
}

func TestGaussian_EvalNormalization(t *testing.T) {
	m := NewGaussian("g_")
	p := Params{
		"g_amplitude": NewParam("g_amplitude", 2.0),
		"g_center":    NewParam("g_center", 0),
		"g_sigma":     NewParam("g_sigma", 0.3),
	}

	// Riemann sum of the density should give back the amplitude.
	x := linspace(-5, 5, 10001)
	y := Eval(m, x, p)
	sum := 0.0
	for _, v := range y {
		sum += v
	}
	sum *= x[1] - x[0]
	if !almostEqual(sum, 2.0, 1e-6) {
		t.Errorf("integral: got %g, want 2", sum)
	}
}

func TestGuess_LocatesPeak(t *testing.T) {
	x := linspace(-1, 1, 201)
	truth := Params{
		"g_amplitude": NewParam("g_amplitude", 1.5),
		"g_center":    NewParam("g_center", 0.2),
		"g_sigma":     NewParam("g_sigma", 0.15),
	}
	m := NewGaussian("g_")
	data := Eval(m, x, truth)

	guess := m.Guess(data, x)
	if got := guess.Value("g_center"); !almostEqual(got, 0.2, 0.02) {
		t.Errorf("guessed center: got %g, want 0.2±0.02", got)
	}
	if got := guess.Value("g_sigma"); !almostEqual(got, 0.15, 0.03) {
		t.Errorf("guessed sigma: got %g, want 0.15±0.03", got)
	}
	if got := guess.Value("g_amplitude"); math.Abs(got-1.5) > 0.3 {
		t.Errorf("guessed amplitude: got %g, want 1.5±0.3", got)
	}
}

func TestQuadratic_GuessIsExactOnCleanData(t *testing.T) {
	x := linspace(-2, 2, 41)
	m := NewQuadratic("q_")
	data := make([]float64, len(x))
	for i, xi := range x {
		data[i] = 3*xi*xi - 1.5*xi + 0.25
	}

	guess := m.Guess(data, x)
	if got := guess.Value("q_a"); !almostEqual(got, 3, 1e-9) {
		t.Errorf("a: got %g, want 3", got)
	}
	if got := guess.Value("q_b"); !almostEqual(got, -1.5, 1e-9) {
		t.Errorf("b: got %g, want -1.5", got)
	}
	if got := guess.Value("q_c"); !almostEqual(got, 0.25, 1e-9) {
		t.Errorf("c: got %g, want 0.25", got)
	}
}

func TestParams_SafeGetters(t *testing.T) {
	p := Params{"a_center": NewParam("a_center", 1.25)}

	if got := p.Value("a_center"); got != 1.25 {
		t.Errorf("Value: got %g", got)
	}
	if got := p.Value("missing"); !math.IsNaN(got) {
		t.Errorf("missing Value: got %g, want NaN", got)
	}
	if got := p.Stderr("missing"); !math.IsNaN(got) {
		t.Errorf("missing Stderr: got %g, want NaN", got)
	}
}

func TestBoundTransform_RoundTrip(t *testing.T) {
	cases := []Param{
		{Name: "both", Value: 0.3, Min: 0, Max: 1, Vary: true},
		{Name: "min", Value: 2.5, Min: 1, Max: math.Inf(1), Vary: true},
		{Name: "max", Value: -0.5, Min: math.Inf(-1), Max: 0, Vary: true},
		{Name: "none", Value: 7, Min: math.Inf(-1), Max: math.Inf(1), Vary: true},
	}

	for _, p := range cases {
		internal := toInternal(p)
		back := toExternal(p, internal)
		if !almostEqual(back, p.Value, 1e-9) {
			t.Errorf("%s: round trip %g -> %g", p.Name, p.Value, back)
		}
	}
}

func TestBoundTransform_RespectsBounds(t *testing.T) {
	p := Param{Name: "b", Value: 0.5, Min: 0, Max: 1, Vary: true}
	for _, internal := range []float64{-100, -1, 0, 1, 100, 1e6} {
		v := toExternal(p, internal)
		if v < 0 || v > 1 {
			t.Errorf("internal %g maps outside bounds: %g", internal, v)
		}
	}
}
