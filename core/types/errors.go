package types

import stderrors "errors"

var (
	// ErrUnknownProgram is returned when an operation references a program
	// id the account holds no token entry for.
	ErrUnknownProgram = stderrors.New("account: unknown program id")
	// ErrInsufficientBalance is returned when a debit would exceed the
	// available balance. The token entry is left unchanged.
	ErrInsufficientBalance = stderrors.New("account: insufficient balance")
	// ErrWrongTransactionType is returned when a transaction is applied
	// through a path that does not handle its type.
	ErrWrongTransactionType = stderrors.New("account: transaction type not applicable")
	// ErrInvalidSignature is returned when a transaction signature does not
	// recover to the declared sender.
	ErrInvalidSignature = stderrors.New("transaction: signature does not match sender")
)
