package scoring

// Names of the two weighting schemes used by the official report templates.
const (
	SchemeObjetivosEquipa = "objetivos_equipa"
	SchemeObjetivos       = "objetivos"
)

// DefaultSchemes returns fresh copies of the built-in schemes keyed by name.
func DefaultSchemes() map[string]Scheme {
	return map[string]Scheme{
		SchemeObjetivosEquipa: MustScheme(SchemeObjetivosEquipa, map[Component]float64{
			ObjetivosIndividuais:     40,
			ObjetivosEquipa:          20,
			CompetenciasTransversais: 20,
			CompetenciasTecnicas:     20,
		}),
		SchemeObjetivos: MustScheme(SchemeObjetivos, map[Component]float64{
			ObjetivosIndividuais:     60,
			CompetenciasTransversais: 20,
			CompetenciasTecnicas:     20,
		}),
	}
}

// Result bundles a computed score for presentation.
type Result struct {
	Scheme  string  `json:"scheme"`
	NAF     float64 `json:"naf"`
	Display float64 `json:"naf_display"`
	Grade   Grade   `json:"grade"`
}

// Evaluate computes NAF, display value and grade in one step.
func Evaluate(scores SubScores, scheme Scheme) (Result, error) {
	naf, err := NAF(scores, scheme)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Scheme:  scheme.Name,
		NAF:     naf,
		Display: RoundForDisplay(naf),
		Grade:   QualitativeGrade(naf),
	}, nil
}
