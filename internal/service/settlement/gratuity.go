package settlement

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/settlement"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	// GratuityMinYears is the service needed before gratuity is payable.
	GratuityMinYears = 5

	gratuityFormula = "last_drawn_salary * 15 / 26 * completed_years, capped"
	dateLayout      = "2006-01-02"
)

var (
	// GratuityCap is the statutory ceiling on a gratuity payout.
	GratuityCap = decimal.NewFromInt(2000000)

	daysPerYear = decimal.RequireFromString("365.25")
	fifteen     = decimal.NewFromInt(15)
	twentySix   = decimal.NewFromInt(26)
)

// GratuityInput carries what a gratuity computation reads.
type GratuityInput struct {
	EmployeeID      string
	JoiningDate     time.Time
	ExitDate        time.Time
	LastDrawnSalary decimal.Decimal
	Source          settlement.SalarySource
}

// serviceDays counts calendar days between two dates, ignoring time of day.
func serviceDays(from, to time.Time) int64 {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int64(t.Sub(f).Hours() / 24)
}

// YearsOfService returns the service length in years of 365.25 days.
func YearsOfService(joining, exit time.Time) decimal.Decimal {
	return decimal.NewFromInt(serviceDays(joining, exit)).Div(daysPerYear)
}

// CalculateGratuity applies the 15/26 rule to completed years of service. Below the
// minimum service the result is ineligible with zero amount. A zero last drawn salary
// yields an eligible result of zero with a warning.
func CalculateGratuity(in GratuityInput) (settlement.Gratuity, error) {
	if in.ExitDate.Before(in.JoiningDate) {
		return settlement.Gratuity{}, fmt.Errorf("%w: exit %s, joined %s",
			settlement.ErrInvalidExitDate, in.ExitDate.Format(dateLayout), in.JoiningDate.Format(dateLayout))
	}

	years := YearsOfService(in.JoiningDate, in.ExitDate)
	completed := int(years.IntPart())
	lastDrawn := money.Round2(money.NonNegative(in.LastDrawnSalary))

	g := settlement.Gratuity{
		EmployeeID:     in.EmployeeID,
		JoiningDate:    in.JoiningDate.Format(dateLayout),
		ExitDate:       in.ExitDate.Format(dateLayout),
		YearsOfService: years.Truncate(2),
		CompletedYears: completed,
		GratuityAmount: decimal.Zero,
		Calculation: settlement.GratuityCalculation{
			LastDrawnSalary: lastDrawn,
			Source:          in.Source,
			GratuityPerYear: decimal.Zero,
			UncappedAmount:  decimal.Zero,
			Cap:             GratuityCap,
			Formula:         gratuityFormula,
		},
	}

	if completed < GratuityMinYears {
		g.Reason = fmt.Sprintf("%s years of service is below the %d year minimum", years.Truncate(2).StringFixed(2), GratuityMinYears)
		return g, nil
	}

	g.Eligible = true
	if lastDrawn.IsZero() {
		g.Warnings = append(g.Warnings, "no last drawn salary found in finalized payslips or salary structure; gratuity is zero")
		return g, nil
	}

	perYear := money.Round2(lastDrawn.Mul(fifteen).Div(twentySix))
	uncapped := money.Round2(perYear.Mul(decimal.NewFromInt(int64(completed))))
	g.Calculation.GratuityPerYear = perYear
	g.Calculation.UncappedAmount = uncapped
	g.GratuityAmount = uncapped
	if uncapped.GreaterThan(GratuityCap) {
		g.GratuityAmount = GratuityCap
		g.Calculation.Capped = true
	}
	return g, nil
}
