package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListForPeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListForPeriod(ctx context.Context, companyID, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, employee_id, company_id, date, status
		FROM attendances
		WHERE company_id = $1 AND employee_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, companyID, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.Date, &rec.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
