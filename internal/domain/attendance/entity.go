package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the day classification of one attendance record.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusHoliday Status = "holiday"
	StatusWeekend Status = "weekend"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusHoliday, StatusWeekend:
		return true
	}
	return false
}

// Record is one employee-day.
type Record struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	Status     Status
}

// Policy decides how non-working days enter the pro-ration.
type Policy struct {
	// PayNonWorkingDays counts weekends and declared holidays as paid days and keeps
	// them in the denominator (calendar-day pro-ration). When false they are dropped
	// from both sides.
	PayNonWorkingDays bool
}

// Aggregate is the attendance summary of one employee for one payroll period.
type Aggregate struct {
	EmployeeID         string
	PresentDays        int
	HalfDays           int
	AbsentDays         int
	HolidayDays        int
	WeekendDays        int
	PaidNonWorkingDays int
	TotalDays          int
	WorkingDays        decimal.Decimal // present + 0.5 * half
	PayableDays        decimal.Decimal // working days + paid non-working days
	Denominator        decimal.Decimal
	ProRationFactor    decimal.Decimal // in [0, 1], 4 fractional digits
	RecordErrors       []RecordError
}

// RecordError describes an attendance row the aggregator refused.
type RecordError struct {
	RecordID string
	Date     time.Time
	Reason   string
}

func (e RecordError) Error() string {
	return e.Date.Format("2006-01-02") + ": " + e.Reason
}
