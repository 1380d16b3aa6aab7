package loan

import "errors"

var (
	ErrEMINotFound    = errors.New("loan installment not found")
	ErrEMIAlreadyPaid = errors.New("loan installment already paid")
)
