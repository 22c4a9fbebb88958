package grade

import (
	"studentportal/internal/shared"
)

// band maps a minimum percentage (inclusive) to a letter grade. Ordered
// descending; first match wins.
type band struct {
	min    float64
	letter string
}

var bands = []band{
	{97, shared.GradeAPlus},
	{93, shared.GradeA},
	{90, shared.GradeAMinus},
	{87, shared.GradeBPlus},
	{83, shared.GradeB},
	{80, shared.GradeBMinus},
	{77, shared.GradeCPlus},
	{73, shared.GradeC},
	{70, shared.GradeCMinus},
	{60, shared.GradeD},
}

// LetterFor maps a percentage to its letter grade. It never returns "I";
// incompletes are only set through the explicit admin override.
func LetterFor(percentage float64) string {
	for _, b := range bands {
		if percentage >= b.min {
			return b.letter
		}
	}
	return shared.GradeF
}

// Compute derives percentage and letter grade from marks. Either input being
// nil means the marks have not been entered yet: both derived values stay
// unset and no error is returned. marksPossible of zero is a validation
// error, never Inf or NaN.
func Compute(marksEarned, marksPossible *float64) (percentage *float64, letter string, err error) {
	if marksEarned == nil || marksPossible == nil {
		return nil, "", nil
	}
	if *marksPossible == 0 {
		return nil, "", shared.NewValidationError("marks_possible must be greater than zero")
	}
	if *marksEarned < 0 || *marksPossible < 0 {
		return nil, "", shared.NewValidationError("marks cannot be negative")
	}

	pct := *marksEarned / *marksPossible * 100
	return &pct, LetterFor(pct), nil
}

// Recompute derives percentage/letter on a record in place. Callers invoke it
// before every persist that touches the marks, making the derivation explicit
// instead of hiding it in a storage hook.
func Recompute(rec *shared.GradeRecord) error {
	pct, letter, err := Compute(rec.MarksEarned, rec.MarksPossible)
	if err != nil {
		return err
	}
	rec.Percentage = pct
	rec.LetterGrade = letter
	return nil
}
