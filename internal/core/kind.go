package core

import "fmt"

const (
	Remittance Kind = "remittance"
	Expense    Kind = "expense"
	Deposit    Kind = "deposit"
	Withdraw   Kind = "withdraw"
	Interest   Kind = "interest"
)

// Kind tags the directional effect of a transaction. The set is closed:
// every fold in this package switches over it exhaustively and treats
// anything else as a malformed record with zero contribution.
type Kind string

// Valid reports whether k is one of the five recognized kinds.
func (k Kind) Valid() bool {
	switch k {
	case Remittance, Expense, Deposit, Withdraw, Interest:
		return true
	}
	return false
}

// ParseKind converts a raw string tag into a Kind, rejecting unknown tags.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Kinds returns all recognized kinds in a fixed order.
func Kinds() []Kind {
	return []Kind{Remittance, Expense, Deposit, Withdraw, Interest}
}
