package employee

import (
	"time"
)

// Employee is the payroll view of an employee record. Employee CRUD lives outside
// the payroll engine; this struct carries only what payroll and settlement read.
type Employee struct {
	ID               string
	CompanyID        string
	EmployeeCode     string
	FullName         string
	HireDate         time.Time
	ResignationDate  *time.Time
	EmploymentStatus EmploymentStatus

	// Statutory identifiers
	PAN           *string
	UAN           *string
	ESICNumber    *string
	WorkState     string
	PFOptedOut    bool
	PFOnCapped    bool
	ESIExempt     bool
	LWFApplicable bool

	// Bank details; the account number is stored encrypted.
	BankName             string
	BankIFSC             string
	BankAccountEncrypted []byte
	BankAccountHolder    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// EmployedDuring reports whether the employee was on the rolls for any day of [start, end].
func (e Employee) EmployedDuring(start, end time.Time) bool {
	if e.HireDate.After(end) {
		return false
	}
	return e.ResignationDate == nil || !e.ResignationDate.Before(start)
}
