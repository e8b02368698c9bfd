package peakfit

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Composite is the sum of component models. Evaluation is the sum of the
// component evaluations and the parameter namespace is the union of the
// components' prefixed parameters, so composition is value-preserving and
// associative.
type Composite struct {
	parts []Model
}

// Add sums models into a Composite. Component parameter names must be
// disjoint, which holds whenever the prefixes are distinct.
func Add(models ...Model) (*Composite, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	seen := make(map[string]struct{})
	var parts []Model
	for _, m := range models {
		// Flatten nested composites so Components is always the leaf list.
		if c, ok := m.(*Composite); ok {
			parts = append(parts, c.parts...)
		} else {
			parts = append(parts, m)
		}
	}

	for _, m := range parts {
		for _, name := range m.Names() {
			if _, dup := seen[name]; dup {
				return nil, ErrDuplicateParam
			}
			seen[name] = struct{}{}
		}
	}

	return &Composite{parts: parts}, nil
}

// Components returns the leaf models in summation order.
func (c *Composite) Components() []Model {
	out := make([]Model, len(c.parts))
	copy(out, c.parts)

	return out
}

// Prefixes returns the component prefixes in summation order.
func (c *Composite) Prefixes() []string {
	out := make([]string, len(c.parts))
	for i, m := range c.parts {
		out[i] = m.Prefix()
	}

	return out
}

// Prefix returns the empty string: a composite owns no namespace of its own.
func (c *Composite) Prefix() string { return "" }

func (c *Composite) Names() []string {
	var out []string
	for _, m := range c.parts {
		out = append(out, m.Names()...)
	}

	return out
}

func (c *Composite) EvalTo(dst, x []float64, p Params) {
	for i := range dst {
		dst[i] = 0
	}

	tmp := make([]float64, len(x))
	for _, m := range c.parts {
		m.EvalTo(tmp, x, p)
		vecmath.AddBlockInPlace(dst, tmp)
	}
}

// Guess delegates to each component and merges the results. Prefixes keep
// the merged namespace collision-free.
func (c *Composite) Guess(data, x []float64) Params {
	out := make(Params)
	for _, m := range c.parts {
		out = out.Merge(m.Guess(data, x))
	}

	return out
}
