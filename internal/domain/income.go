package domain

// IncomeRecord is the reference returned by the financial ledger after an
// income entry is created for a trip.
type IncomeRecord struct {
	ID    string
	Total float64
}

// MarginPercentage computes (income − expenses) / income × 100. ok is false
// when income is zero or no expense data was recorded, so callers never
// divide by zero or invent a margin from missing data.
func MarginPercentage(income, expenses float64, hasExpenses bool) (float64, bool) {
	if income == 0 || !hasExpenses {
		return 0, false
	}
	return (income - expenses) / income * 100, true
}

// ProfitPerKM computes (income − expenses) / km. ok is false when km is zero
// or no expense data was recorded.
func ProfitPerKM(income, expenses float64, km int64, hasExpenses bool) (float64, bool) {
	if km == 0 || !hasExpenses {
		return 0, false
	}
	return (income - expenses) / float64(km), true
}
