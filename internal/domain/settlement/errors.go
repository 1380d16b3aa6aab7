package settlement

import "errors"

var (
	ErrSettlementNotFound      = errors.New("settlement not found")
	ErrSettlementAlreadyExists = errors.New("an open settlement already exists for this employee and last working date")
	ErrSettlementImmutable     = errors.New("settlement is paid or cancelled and can no longer change")
	ErrSettlementNotEditable   = errors.New("only draft or pending settlements can be edited")
	ErrInvalidTransition       = errors.New("invalid settlement status transition")
	ErrInvalidExitDate         = errors.New("exit date is before the joining date")
)
