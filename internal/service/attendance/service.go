package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
}

func NewAttendanceService(attendanceRepo attendance.AttendanceRepository) attendance.AttendanceService {
	return &AttendanceServiceImpl{attendanceRepo: attendanceRepo}
}

// Aggregate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Aggregate(ctx context.Context, companyID, employeeID string, start, end time.Time, policy attendance.Policy) (attendance.Aggregate, error) {
	start, end = day(start), day(end)
	if end.Before(start) {
		return attendance.Aggregate{}, attendance.ErrInvalidPeriod
	}

	records, err := s.attendanceRepo.ListForPeriod(ctx, companyID, employeeID, start, end)
	if err != nil {
		return attendance.Aggregate{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	agg, err := Summarize(employeeID, records, start, end, policy)
	if err != nil {
		return attendance.Aggregate{}, err
	}
	for _, re := range agg.RecordErrors {
		slog.Warn("attendance record skipped",
			"employee_id", employeeID,
			"record_id", re.RecordID,
			"date", re.Date.Format("2006-01-02"),
			"reason", re.Reason,
		)
	}
	return agg, nil
}

// Summarize counts day statuses and derives the pro-ration factor.
//
// With PayNonWorkingDays the denominator is every calendar day of the period and weekends and
// holidays are paid. Without it, recorded weekends and holidays are removed from the
// denominator and are not paid. Half days count 0.5. Malformed rows (outside the period,
// a second row for the same day, an unknown status) are reported in RecordErrors and ignored.
func Summarize(employeeID string, records []attendance.Record, start, end time.Time, policy attendance.Policy) (attendance.Aggregate, error) {
	start, end = day(start), day(end)
	if end.Before(start) {
		return attendance.Aggregate{}, attendance.ErrInvalidPeriod
	}

	agg := attendance.Aggregate{
		EmployeeID: employeeID,
		TotalDays:  int(end.Sub(start).Hours()/24) + 1,
	}

	seen := make(map[time.Time]bool, len(records))
	valid := 0
	for _, r := range records {
		date := day(r.Date)
		switch {
		case date.Before(start) || date.After(end):
			agg.RecordErrors = append(agg.RecordErrors, attendance.RecordError{RecordID: r.ID, Date: date, Reason: "date outside payroll period"})
			continue
		case !r.Status.Valid():
			agg.RecordErrors = append(agg.RecordErrors, attendance.RecordError{RecordID: r.ID, Date: date, Reason: fmt.Sprintf("unknown status %q", r.Status)})
			continue
		case seen[date]:
			agg.RecordErrors = append(agg.RecordErrors, attendance.RecordError{RecordID: r.ID, Date: date, Reason: "duplicate record for day"})
			continue
		}
		seen[date] = true
		valid++

		switch r.Status {
		case attendance.StatusPresent:
			agg.PresentDays++
		case attendance.StatusHalfDay:
			agg.HalfDays++
		case attendance.StatusAbsent:
			agg.AbsentDays++
		case attendance.StatusHoliday:
			agg.HolidayDays++
		case attendance.StatusWeekend:
			agg.WeekendDays++
		}
	}

	nonWorking := agg.HolidayDays + agg.WeekendDays
	denominator := agg.TotalDays
	if policy.PayNonWorkingDays {
		agg.PaidNonWorkingDays = nonWorking
	} else {
		denominator -= nonWorking
	}

	agg.WorkingDays = decimal.NewFromInt(int64(agg.PresentDays)).Add(half.Mul(decimal.NewFromInt(int64(agg.HalfDays))))
	agg.PayableDays = agg.WorkingDays.Add(decimal.NewFromInt(int64(agg.PaidNonWorkingDays)))
	agg.Denominator = decimal.NewFromInt(int64(denominator))
	agg.ProRationFactor = decimal.Zero

	if valid > 0 && denominator > 0 {
		factor := agg.PayableDays.Div(agg.Denominator)
		if factor.GreaterThan(decimal.NewFromInt(1)) {
			factor = decimal.NewFromInt(1)
		}
		agg.ProRationFactor = factor.Round(4)
	}

	return agg, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
