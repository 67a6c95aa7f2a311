package proration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liyaqa/membership/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsUpgrade(t *testing.T) {
	assert.True(t, IsUpgrade(decimal.NewFromInt(200), decimal.NewFromInt(300)))
	assert.False(t, IsUpgrade(decimal.NewFromInt(300), decimal.NewFromInt(200)))
	assert.False(t, IsUpgrade(decimal.NewFromInt(200), decimal.NewFromInt(200)))
}

func TestDetermineMode(t *testing.T) {
	immediate := types.ProrationModeProrateImmediately
	endOfPeriod := types.ProrationModeEndOfPeriod

	t.Run("upgrade defaults to immediate", func(t *testing.T) {
		assert.Equal(t, types.ProrationModeProrateImmediately, DetermineMode(true, nil))
	})

	t.Run("upgrade honors explicit preference", func(t *testing.T) {
		assert.Equal(t, types.ProrationModeEndOfPeriod, DetermineMode(true, &endOfPeriod))
	})

	t.Run("downgrade defaults to end of period", func(t *testing.T) {
		assert.Equal(t, types.ProrationModeEndOfPeriod, DetermineMode(false, nil))
	})

	t.Run("downgrade ignores immediate preference", func(t *testing.T) {
		assert.Equal(t, types.ProrationModeEndOfPeriod, DetermineMode(false, &immediate))
	})

	t.Run("upgrade ignores other modes", func(t *testing.T) {
		fullCredit := types.ProrationModeFullPeriodCredit
		noProration := types.ProrationModeNoProration
		assert.Equal(t, types.ProrationModeProrateImmediately, DetermineMode(true, &fullCredit))
		assert.Equal(t, types.ProrationModeProrateImmediately, DetermineMode(true, &noProration))
	})
}

func TestCalculate_ProrateImmediately(t *testing.T) {
	// 30-day period, change on day 20, 10 days remaining.
	result := Calculate(Params{
		CurrentPlanPrice: decimal.NewFromInt(200),
		NewPlanPrice:     decimal.NewFromInt(300),
		PeriodStart:      date(2026, 1, 1),
		PeriodEnd:        date(2026, 1, 31),
		ChangeDate:       date(2026, 1, 21),
		Mode:             types.ProrationModeProrateImmediately,
	})

	assert.Equal(t, "66.67", result.Credit.StringFixed(2))
	assert.Equal(t, "100.00", result.Charge.StringFixed(2))
	assert.Equal(t, "33.33", result.Net.StringFixed(2))
	assert.Equal(t, 10, result.DaysRemaining)
	assert.Equal(t, 30, result.TotalDays)
	assert.Equal(t, date(2026, 1, 21), result.EffectiveDate)
}

func TestCalculate_NetIsChargeMinusCredit(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		next    int64
		mode    types.ProrationMode
	}{
		{"immediate upgrade", 200, 300, types.ProrationModeProrateImmediately},
		{"immediate downgrade", 300, 150, types.ProrationModeProrateImmediately},
		{"full period credit", 200, 300, types.ProrationModeFullPeriodCredit},
		{"end of period", 200, 300, types.ProrationModeEndOfPeriod},
		{"no proration", 200, 300, types.ProrationModeNoProration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Calculate(Params{
				CurrentPlanPrice: decimal.NewFromInt(tt.current),
				NewPlanPrice:     decimal.NewFromInt(tt.next),
				PeriodStart:      date(2026, 3, 1),
				PeriodEnd:        date(2026, 3, 31),
				ChangeDate:       date(2026, 3, 11),
				Mode:             tt.mode,
			})
			assert.True(t, result.Net.Equal(result.Charge.Sub(result.Credit)),
				"net %s, charge %s, credit %s", result.Net, result.Charge, result.Credit)
		})
	}
}

func TestCalculate_ZeroModes(t *testing.T) {
	params := Params{
		CurrentPlanPrice: decimal.NewFromInt(200),
		NewPlanPrice:     decimal.NewFromInt(300),
		PeriodStart:      date(2026, 1, 1),
		PeriodEnd:        date(2026, 1, 31),
		ChangeDate:       date(2026, 1, 21),
	}

	t.Run("end of period takes effect at period end", func(t *testing.T) {
		params.Mode = types.ProrationModeEndOfPeriod
		result := Calculate(params)
		assert.True(t, result.Credit.IsZero())
		assert.True(t, result.Charge.IsZero())
		assert.True(t, result.Net.IsZero())
		assert.Equal(t, date(2026, 1, 31), result.EffectiveDate)
	})

	t.Run("no proration takes effect at change date", func(t *testing.T) {
		params.Mode = types.ProrationModeNoProration
		result := Calculate(params)
		assert.True(t, result.Net.IsZero())
		assert.Equal(t, date(2026, 1, 21), result.EffectiveDate)
	})
}

func TestCalculate_FullPeriodCredit(t *testing.T) {
	result := Calculate(Params{
		CurrentPlanPrice: decimal.NewFromInt(200),
		NewPlanPrice:     decimal.NewFromInt(300),
		PeriodStart:      date(2026, 1, 1),
		PeriodEnd:        date(2026, 1, 31),
		ChangeDate:       date(2026, 1, 30),
		Mode:             types.ProrationModeFullPeriodCredit,
	})

	assert.Equal(t, "200.00", result.Credit.StringFixed(2))
	assert.Equal(t, "300.00", result.Charge.StringFixed(2))
	assert.Equal(t, "100.00", result.Net.StringFixed(2))
}

func TestCalculate_DegeneratePeriods(t *testing.T) {
	t.Run("no days remaining yields zero result", func(t *testing.T) {
		result := Calculate(Params{
			CurrentPlanPrice: decimal.NewFromInt(200),
			NewPlanPrice:     decimal.NewFromInt(300),
			PeriodStart:      date(2026, 1, 1),
			PeriodEnd:        date(2026, 1, 31),
			ChangeDate:       date(2026, 2, 5),
			Mode:             types.ProrationModeProrateImmediately,
		})
		assert.True(t, result.Net.IsZero())
		assert.True(t, result.Credit.IsZero())
		assert.True(t, result.Charge.IsZero())
	})

	t.Run("zero-length period yields zero result", func(t *testing.T) {
		result := Calculate(Params{
			CurrentPlanPrice: decimal.NewFromInt(200),
			NewPlanPrice:     decimal.NewFromInt(300),
			PeriodStart:      date(2026, 1, 1),
			PeriodEnd:        date(2026, 1, 1),
			ChangeDate:       date(2026, 1, 1),
			Mode:             types.ProrationModeProrateImmediately,
		})
		assert.True(t, result.Net.IsZero())
		assert.Equal(t, 0, result.TotalDays)
	})
}

func TestDailyRate(t *testing.T) {
	rate := DailyRate(decimal.NewFromInt(200), 30)
	assert.Equal(t, "6.6667", rate.StringFixed(4))

	require.True(t, DailyRate(decimal.NewFromInt(200), 0).IsZero())
	require.True(t, DailyRate(decimal.NewFromInt(200), -3).IsZero())
}

func TestFormatSummary(t *testing.T) {
	result := Result{
		Net:           decimal.RequireFromString("33.33"),
		EffectiveDate: date(2026, 1, 21),
	}

	assert.Equal(t, "You will be charged 33.33 SAR, effective 2026-01-21", FormatSummary(result, "SAR", "en"))
	assert.Contains(t, FormatSummary(result, "SAR", "ar"), "33.33 SAR")

	credit := Result{Net: decimal.RequireFromString("-10.00"), EffectiveDate: date(2026, 1, 21)}
	assert.Equal(t, "You will be credited 10.00 SAR, effective 2026-01-21", FormatSummary(credit, "SAR", "en"))

	zero := Result{Net: decimal.Zero, EffectiveDate: date(2026, 1, 31)}
	assert.Equal(t, "No charges apply, the change takes effect on 2026-01-31", FormatSummary(zero, "SAR", "en"))
}
