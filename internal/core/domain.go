package core

import "strings"

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Defaults substituted for blank text fields on transaction writes.
const (
	DefaultDescription = "Untitled"
	DefaultCategory    = "Uncategorized"
	DefaultAccount     = "Cash"
	DefaultAccountKind = "Asset"
)

type (
	// TxType is the direction of a transaction. Income amounts are stored
	// positive, expense amounts negative.
	TxType string

	// KindClass buckets an account's free-text kind into the two classes
	// net worth cares about.
	KindClass int

	Account struct {
		ID      int64
		Name    string
		Kind    string
		Balance float64
	}

	// Transaction references its account by name, not by id. The stored
	// date is always strict ISO "YYYY-MM-DD" so month filtering can use a
	// 7-character prefix.
	Transaction struct {
		ID          int64
		Date        string
		Description string
		Category    string
		Account     string
		Amount      float64
		Type        TxType
	}

	Budget struct {
		ID       int64
		Month    string // "YYYY-MM"
		Category string
		Planned  float64
	}

	Goal struct {
		ID       int64
		Name     string
		Target   float64
		Current  float64
		Deadline string // optional ISO date, empty when unset
	}
)

const (
	ClassAsset KindClass = iota
	ClassLiability
)

// ClassifyKind maps a free-text account kind to asset or liability.
// Anything that is not a known liability label counts as an asset.
func ClassifyKind(kind string) KindClass {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "debt", "liability":
		return ClassLiability
	default:
		return ClassAsset
	}
}

// ParseTxType normalizes and validates a transaction type string.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", Validationf("transaction type must be 'income' or 'expense'")
	}
}

// SignAmount re-signs an amount by transaction type: income positive,
// expense negative. The magnitude is always taken as absolute.
func SignAmount(t TxType, amount float64) float64 {
	if amount < 0 {
		amount = -amount
	}
	if t == Expense {
		return -amount
	}
	return amount
}

// Progress is current/target, defined as 0 when target is not positive.
func (g Goal) Progress() float64 {
	if g.Target <= 0 {
		return 0
	}
	return g.Current / g.Target
}
