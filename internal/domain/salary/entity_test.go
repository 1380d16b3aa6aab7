package salary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStructure_ActiveOn(t *testing.T) {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	s := Structure{EffectiveFrom: from, EffectiveTo: &to}

	assert.False(t, s.ActiveOn(from.AddDate(0, 0, -1)))
	assert.True(t, s.ActiveOn(from))
	assert.True(t, s.ActiveOn(to))
	assert.False(t, s.ActiveOn(to.AddDate(0, 0, 1)))

	open := Structure{EffectiveFrom: from}
	assert.True(t, open.ActiveOn(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStructure_MonthlyGross(t *testing.T) {
	s := Structure{
		Basic:             decimal.NewFromInt(20000),
		DearnessAllowance: decimal.NewFromInt(2000),
		HRA:               decimal.NewFromInt(8000),
		SpecialAllowance:  decimal.NewFromInt(5000),
		Conveyance:        decimal.NewFromInt(1600),
		Medical:           decimal.NewFromInt(1250),
	}
	assert.True(t, s.MonthlyGross().Equal(decimal.NewFromInt(37850)))
	assert.True(t, s.BasicPlusDA().Equal(decimal.NewFromInt(22000)))
}
