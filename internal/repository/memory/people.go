package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/salary"
)

type EmployeeRepository struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository(employees ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]employee.Employee)}
	for _, e := range employees {
		r.employees[e.ID] = e
	}
	return r
}

func (r *EmployeeRepository) GetByID(ctx context.Context, companyID, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) ListPayrollEligible(ctx context.Context, companyID string, start, end time.Time) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.employees {
		if e.CompanyID == companyID && e.EmployedDuring(start, end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

type SalaryRepository struct {
	mu         sync.Mutex
	structures []salary.Structure
}

func NewSalaryRepository(structures ...salary.Structure) *SalaryRepository {
	return &SalaryRepository{structures: structures}
}

func (r *SalaryRepository) Put(s salary.Structure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.structures = append(r.structures, s)
}

func (r *SalaryRepository) ActiveOn(ctx context.Context, companyID, employeeID string, date time.Time) (salary.Structure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		best  salary.Structure
		found bool
	)
	for _, s := range r.structures {
		if s.CompanyID != companyID || s.EmployeeID != employeeID || !s.ActiveOn(date) {
			continue
		}
		if !found || s.EffectiveFrom.After(best.EffectiveFrom) {
			best, found = s, true
		}
	}
	if !found {
		return salary.Structure{}, salary.ErrStructureNotFound
	}
	return best, nil
}

type AttendanceRepository struct {
	mu      sync.Mutex
	records []attendance.Record
}

func NewAttendanceRepository(records ...attendance.Record) *AttendanceRepository {
	return &AttendanceRepository{records: records}
}

func (r *AttendanceRepository) Put(records ...attendance.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
}

func (r *AttendanceRepository) ListForPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.records {
		if rec.CompanyID != companyID || rec.EmployeeID != employeeID {
			continue
		}
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type LeaveRepository struct {
	mu       sync.Mutex
	balances map[string][]leave.Balance
	pending  []leave.Request
}

func NewLeaveRepository() *LeaveRepository {
	return &LeaveRepository{balances: make(map[string][]leave.Balance)}
}

func (r *LeaveRepository) PutBalance(b leave.Balance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[b.EmployeeID] = append(r.balances[b.EmployeeID], b)
}

func (r *LeaveRepository) PutPending(req leave.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, req)
}

func (r *LeaveRepository) BalancesForYear(ctx context.Context, companyID, employeeID string, year int) ([]leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Balance
	for _, b := range r.balances[employeeID] {
		if b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *LeaveRepository) PendingOverlapping(ctx context.Context, companyID string, start, end time.Time) ([]leave.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Request
	for _, req := range r.pending {
		if req.Status != leave.LeaveRequestStatusWaitingApproval {
			continue
		}
		if req.StartDate.After(end) || req.EndDate.Before(start) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}
