// Package scoring computes the final evaluation score (NAF) and its
// qualitative grade.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Component names one weighted sub-score.
type Component string

const (
	ObjetivosIndividuais     Component = "individual"
	ObjetivosEquipa          Component = "equipa"
	CompetenciasTransversais Component = "transversais"
	CompetenciasTecnicas     Component = "tecnicas"
)

var knownComponents = map[Component]bool{
	ObjetivosIndividuais:     true,
	ObjetivosEquipa:          true,
	CompetenciasTransversais: true,
	CompetenciasTecnicas:     true,
}

var (
	ErrMissingSubScore = errors.New("missing sub-score")
	ErrInvalidScheme   = errors.New("invalid weight scheme")
	ErrInvalidSubScore = errors.New("invalid sub-score")
)

// SubScores maps components to values, nominally in [0,5].
type SubScores map[Component]float64

// Scheme is a named weight table in percentages.
type Scheme struct {
	Name    string
	weights map[Component]float64
}

// NewScheme validates that every component is known, every weight is
// positive and the weights sum to exactly 100.
func NewScheme(name string, weights map[Component]float64) (Scheme, error) {
	if len(weights) == 0 {
		return Scheme{}, fmt.Errorf("%w: %s has no weights", ErrInvalidScheme, name)
	}
	total := decimal.Zero
	copied := make(map[Component]float64, len(weights))
	for c, w := range weights {
		if !knownComponents[c] {
			return Scheme{}, fmt.Errorf("%w: %s: unknown component %q", ErrInvalidScheme, name, c)
		}
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return Scheme{}, fmt.Errorf("%w: %s: weight of %s must be positive", ErrInvalidScheme, name, c)
		}
		total = total.Add(decimal.NewFromFloat(w))
		copied[c] = w
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		return Scheme{}, fmt.Errorf("%w: %s: weights sum to %s, want 100", ErrInvalidScheme, name, total.String())
	}
	return Scheme{Name: name, weights: copied}, nil
}

// MustScheme is NewScheme for package-level defaults.
func MustScheme(name string, weights map[Component]float64) Scheme {
	s, err := NewScheme(name, weights)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseScheme reads "individual:40,equipa:20,transversais:20,tecnicas:20".
func ParseScheme(name, raw string) (Scheme, error) {
	weights := make(map[Component]float64)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			return Scheme{}, fmt.Errorf("%w: %s: malformed entry %q", ErrInvalidScheme, name, part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Scheme{}, fmt.Errorf("%w: %s: %v", ErrInvalidScheme, name, err)
		}
		weights[Component(strings.TrimSpace(k))] = w
	}
	return NewScheme(name, weights)
}

// Weight returns the percentage for c, zero when c is not weighted.
func (s Scheme) Weight(c Component) float64 {
	return s.weights[c]
}

// Components lists the weighted components in a stable order.
func (s Scheme) Components() []Component {
	order := []Component{ObjetivosIndividuais, ObjetivosEquipa, CompetenciasTransversais, CompetenciasTecnicas}
	out := make([]Component, 0, len(s.weights))
	for _, c := range order {
		if _, ok := s.weights[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s Scheme) String() string {
	parts := make([]string, 0, len(s.weights))
	for _, c := range s.Components() {
		parts = append(parts, fmt.Sprintf("%s:%s", c, strconv.FormatFloat(s.weights[c], 'f', -1, 64)))
	}
	return strings.Join(parts, ",")
}

// NAF returns Σ score × weight/100 over the scheme's components. Every
// weighted component must be present; extra components are ignored.
func NAF(scores SubScores, scheme Scheme) (float64, error) {
	if len(scheme.weights) == 0 {
		return 0, ErrInvalidScheme
	}
	var missing []string
	sum := decimal.Zero
	for _, c := range scheme.Components() {
		v, ok := scores[c]
		if !ok {
			missing = append(missing, string(c))
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidSubScore, c)
		}
		sum = sum.Add(decimal.NewFromFloat(v).Mul(decimal.NewFromFloat(scheme.weights[c])))
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return 0, fmt.Errorf("%w: %s", ErrMissingSubScore, strings.Join(missing, ", "))
	}
	naf, _ := sum.Div(hundred).Float64()
	return naf, nil
}

var hundred = decimal.NewFromInt(100)

// WeightedItem is one weighted score, such as a contracted objective.
// Score is nil until the item has been assessed.
type WeightedItem struct {
	Weight float64
	Score  *float64
}

// WeightedMean returns Σ score × weight / 100. ok is false unless every
// item is scored and the weights total exactly 100.
func WeightedMean(items []WeightedItem) (float64, bool) {
	if len(items) == 0 {
		return 0, false
	}
	sum := decimal.Zero
	for _, it := range items {
		if it.Score == nil || math.IsNaN(*it.Score) || math.IsInf(*it.Score, 0) {
			return 0, false
		}
		sum = sum.Add(decimal.NewFromFloat(*it.Score).Mul(decimal.NewFromFloat(it.Weight)))
	}
	if !TotalWeight(items).Equal(hundred) {
		return 0, false
	}
	mean, _ := sum.Div(hundred).Float64()
	return mean, true
}

// TotalWeight adds the item weights exactly.
func TotalWeight(items []WeightedItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if math.IsNaN(it.Weight) || math.IsInf(it.Weight, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(it.Weight))
	}
	return total
}

// RoundForDisplay rounds half away from zero to two decimals. Stored
// scores keep full precision.
func RoundForDisplay(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatForDisplay renders v with two decimals and a comma separator.
func FormatForDisplay(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}
