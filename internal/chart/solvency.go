package chart

// Solvency is the two-state standing of a running balance.
type Solvency int

const (
	Positive Solvency = iota
	Negative
)

func (s Solvency) String() string {
	if s == Negative {
		return "negative"
	}
	return "positive"
}

// SolvencyOf looks only at the last balance: >= 0 is Positive, < 0 is Negative.
// An empty sequence counts as a final balance of zero.
func SolvencyOf(balances []float64) Solvency {
	if len(balances) == 0 {
		return Positive
	}
	if balances[len(balances)-1] < 0 {
		return Negative
	}
	return Positive
}
