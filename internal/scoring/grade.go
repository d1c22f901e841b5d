package scoring

// Grade is the qualitative mention attached to a NAF.
type Grade string

const (
	GradeMuitoBom     Grade = "Muito Bom"
	GradeBom          Grade = "Bom"
	GradeSuficiente   Grade = "Suficiente"
	GradeInsuficiente Grade = "Insuficiente"
	GradeMau          Grade = "Mau"
)

// thresholds are lower-inclusive and descending.
var thresholds = []struct {
	min   float64
	grade Grade
}{
	{4.5, GradeMuitoBom},
	{4.0, GradeBom},
	{3.0, GradeSuficiente},
	{2.0, GradeInsuficiente},
}

// QualitativeGrade maps a NAF to its mention. Boundaries belong to the
// higher grade; anything below 2.0 (including NaN) is Mau.
func QualitativeGrade(naf float64) Grade {
	for _, t := range thresholds {
		if naf >= t.min {
			return t.grade
		}
	}
	return GradeMau
}

// Grades lists every mention from best to worst.
func Grades() []Grade {
	return []Grade{GradeMuitoBom, GradeBom, GradeSuficiente, GradeInsuficiente, GradeMau}
}
