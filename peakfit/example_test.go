package peakfit_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-arpes/peakfit"
)

func ExampleGuessFit() {
	m := peakfit.NewLorentzian("a_")
	truth := peakfit.Params{
		"a_amplitude": peakfit.NewParam("a_amplitude", 1.0),
		"a_center":    peakfit.NewParam("a_center", 0.5),
		"a_sigma":     peakfit.NewParam("a_sigma", 0.1),
	}

	x := make([]float64, 201)
	for i := range x {
		x[i] = -1 + 2*float64(i)/200
	}
	data := peakfit.Eval(m, x, truth)

	res, _ := peakfit.GuessFit(m, data, x, nil)
	fmt.Printf("center=%.3f sigma=%.3f\n",
		res.Params.Value("a_center"),
		res.Params.Value("a_sigma"))

	// Output:
	// center=0.500 sigma=0.100
}

func ExampleAdd() {
	a := peakfit.NewGaussian("a_")
	bg := peakfit.NewConstant("bg_")
	model, _ := peakfit.Add(a, bg)

	p := peakfit.Params{
		"a_amplitude": peakfit.NewParam("a_amplitude", 1.0),
		"a_center":    peakfit.NewParam("a_center", 0),
		"a_sigma":     peakfit.NewParam("a_sigma", 1 / math.Sqrt(2*math.Pi)),
		"bg_c":        peakfit.NewParam("bg_c", 0.5),
	}

	y := peakfit.Eval(model, []float64{0}, p)
	fmt.Printf("%.1f\n", y[0])

	// Output:
	// 1.5
}
