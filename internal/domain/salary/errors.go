package salary

import "errors"

var (
	ErrStructureNotFound = errors.New("no active salary structure")
)
