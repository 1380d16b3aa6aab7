package settlement

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll/internal/domain/settlement"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateGratuity(t *testing.T) {
	tests := []struct {
		name          string
		joining       time.Time
		exit          time.Time
		salary        string
		wantEligible  bool
		wantCompleted int
		wantPerYear   string
		wantAmount    string
		wantCapped    bool
	}{
		{
			name:          "five years at 26000",
			joining:       date(2020, time.January, 1),
			exit:          date(2025, time.January, 1),
			salary:        "26000",
			wantEligible:  true,
			wantCompleted: 5,
			wantPerYear:   "15000",
			wantAmount:    "75000",
		},
		{
			name:          "partial year is not counted",
			joining:       date(2014, time.June, 1),
			exit:          date(2025, time.January, 15),
			salary:        "26000",
			wantEligible:  true,
			wantCompleted: 10,
			wantPerYear:   "15000",
			wantAmount:    "150000",
		},
		{
			name:          "one day short of five years",
			joining:       date(2020, time.January, 2),
			exit:          date(2025, time.January, 1),
			salary:        "26000",
			wantCompleted: 4,
			wantPerYear:   "0",
			wantAmount:    "0",
		},
		{
			name:          "capped",
			joining:       date(2000, time.April, 1),
			exit:          date(2025, time.April, 1),
			salary:        "500000",
			wantEligible:  true,
			wantCompleted: 24,
			wantPerYear:   "288461.54",
			wantAmount:    "2000000",
			wantCapped:    true,
		},
		{
			name:          "rounded per year",
			joining:       date(2015, time.March, 1),
			exit:          date(2022, time.March, 31),
			salary:        "30000",
			wantEligible:  true,
			wantCompleted: 7,
			wantPerYear:   "17307.69",
			wantAmount:    "121153.83",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := CalculateGratuity(GratuityInput{
				EmployeeID:      "e1",
				JoiningDate:     tt.joining,
				ExitDate:        tt.exit,
				LastDrawnSalary: decimal.RequireFromString(tt.salary),
				Source:          settlement.SourceStructure,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantEligible, g.Eligible)
			assert.Equal(t, tt.wantCompleted, g.CompletedYears)
			assert.True(t, decimal.RequireFromString(tt.wantPerYear).Equal(g.Calculation.GratuityPerYear), "per year %s", g.Calculation.GratuityPerYear)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(g.GratuityAmount), "amount %s", g.GratuityAmount)
			assert.Equal(t, tt.wantCapped, g.Calculation.Capped)
			assert.False(t, g.GratuityAmount.GreaterThan(GratuityCap))
			if !tt.wantEligible {
				assert.NotEmpty(t, g.Reason)
			}
		})
	}
}

func TestCalculateGratuity_FiveCalendarYearsWithOneLeapDay(t *testing.T) {
	// 1826 days / 365.25 falls just short of five years
	g, err := CalculateGratuity(GratuityInput{
		EmployeeID:      "e1",
		JoiningDate:     date(2021, time.January, 1),
		ExitDate:        date(2026, time.January, 1),
		LastDrawnSalary: decimal.RequireFromString("26000"),
		Source:          settlement.SourcePayslip,
	})
	require.NoError(t, err)
	assert.False(t, g.Eligible)
	assert.Equal(t, 4, g.CompletedYears)
	assert.Equal(t, "4.99", g.YearsOfService.StringFixed(2))
	assert.True(t, g.GratuityAmount.IsZero())
	assert.Equal(t, "4.99 years of service is below the 5 year minimum", g.Reason)

	// one more day completes the fifth year
	g, err = CalculateGratuity(GratuityInput{
		EmployeeID:      "e1",
		JoiningDate:     date(2021, time.January, 1),
		ExitDate:        date(2026, time.January, 2),
		LastDrawnSalary: decimal.RequireFromString("26000"),
		Source:          settlement.SourcePayslip,
	})
	require.NoError(t, err)
	assert.True(t, g.Eligible)
	assert.Equal(t, 5, g.CompletedYears)
	assert.True(t, decimal.RequireFromString("75000").Equal(g.GratuityAmount))
}

func TestCalculateGratuity_ZeroSalaryWarns(t *testing.T) {
	g, err := CalculateGratuity(GratuityInput{
		EmployeeID:      "e1",
		JoiningDate:     date(2015, time.January, 1),
		ExitDate:        date(2025, time.January, 1),
		LastDrawnSalary: decimal.Zero,
		Source:          settlement.SourceNone,
	})
	require.NoError(t, err)
	assert.True(t, g.Eligible)
	assert.True(t, g.GratuityAmount.IsZero())
	require.Len(t, g.Warnings, 1)
	assert.Equal(t, settlement.SourceNone, g.Calculation.Source)
}

func TestCalculateGratuity_ExitBeforeJoining(t *testing.T) {
	_, err := CalculateGratuity(GratuityInput{
		JoiningDate: date(2025, time.January, 1),
		ExitDate:    date(2024, time.January, 1),
	})
	assert.ErrorIs(t, err, settlement.ErrInvalidExitDate)
}

func TestYearsOfService(t *testing.T) {
	years := YearsOfService(date(2020, time.January, 1), date(2025, time.January, 1))
	assert.Equal(t, "5.00", years.StringFixed(2))

	// time of day does not shorten the service
	years = YearsOfService(time.Date(2020, time.January, 1, 18, 0, 0, 0, time.UTC), date(2025, time.January, 1))
	assert.Equal(t, int64(5), years.IntPart())
}
