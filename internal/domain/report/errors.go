package report

import "errors"

var (
	ErrPeriodNotReportable = errors.New("reports need a finalized, locked or paid payroll period")
	ErrDecryptorMissing    = errors.New("bank transfer report needs a data encryption key")
)
