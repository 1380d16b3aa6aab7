package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
)

// preCheck lists what would make the run incomplete or wrong: employees without an active
// salary structure, loans approved but not yet disbursed, and leave still awaiting approval
// inside the period.
func (s *PayrollServiceImpl) preCheck(ctx context.Context, period payroll.Period) ([]string, error) {
	companyID := period.CompanyID
	var warnings []string

	employees, err := s.eligibleEmployees(ctx, companyID, period)
	if err != nil {
		return nil, err
	}
	for _, emp := range employees {
		_, err := s.salaryRepo.ActiveOn(ctx, companyID, emp.ID, period.End())
		if errors.Is(err, salary.ErrStructureNotFound) {
			warnings = append(warnings, fmt.Sprintf("no salary structure for emp %s", emp.EmployeeCode))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve salary structure: %w", err)
		}
	}

	loans, err := s.loanRepo.AwaitingDisbursement(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans awaiting disbursement: %w", err)
	}
	for _, l := range loans {
		warnings = append(warnings, fmt.Sprintf("%s %s for emp %s is approved but not disbursed", l.Type, l.ID, l.EmployeeCode))
	}

	requests, err := s.leaveRepo.PendingOverlapping(ctx, companyID, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to list pending leave: %w", err)
	}
	for _, r := range requests {
		warnings = append(warnings, fmt.Sprintf("leave request %s for emp %s overlaps the period and awaits approval", r.ID, r.EmployeeCode))
	}

	return warnings, nil
}
