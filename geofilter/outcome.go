package geofilter

// Outcome is the three-valued result of evaluating a filter expression
// against a single resource. Unknown arises from missing queryables,
// NULL-propagating arguments, and operations whose result is indeterminate
// by contract.
type Outcome int

const (
	False Outcome = iota
	True
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	default:
		return "UNKNOWN"
	}
}

// OutcomeOf maps a final evaluation value to an Outcome: booleans map to
// True/False, NULL to Unknown.
func OutcomeOf(v Value) (Outcome, error) {
	switch {
	case v.IsNull():
		return Unknown, nil
	case v.IsBool():
		b, _ := v.AsBool()
		if b {
			return True, nil
		}
		return False, nil
	default:
		return Unknown, EvalError("filter expression did not evaluate to a boolean or NULL")
	}
}
