package statutory

import "errors"

var (
	ErrRateTableMissing    = errors.New("statutory rate table missing")
	ErrDeclarationNotFound = errors.New("tax declaration not found")
	ErrInvalidRegime       = errors.New("invalid tax regime")
)
