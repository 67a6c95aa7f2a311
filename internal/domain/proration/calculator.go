package proration

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/liyaqa/membership/internal/types"
)

// Params describes one plan change for proration.
type Params struct {
	CurrentPlanPrice decimal.Decimal
	NewPlanPrice     decimal.Decimal
	PeriodStart      time.Time
	PeriodEnd        time.Time
	ChangeDate       time.Time
	Mode             types.ProrationMode
}

// Result is the monetary outcome of a plan change. Net is positive when the
// member owes money and negative when the member is owed a credit.
type Result struct {
	Credit        decimal.Decimal `json:"credit"`
	Charge        decimal.Decimal `json:"charge"`
	Net           decimal.Decimal `json:"net"`
	EffectiveDate time.Time       `json:"effective_date"`
	DaysRemaining int             `json:"days_remaining"`
	TotalDays     int             `json:"total_days"`
}

// IsUpgrade reports whether moving to the new price is an upgrade: strictly
// greater recurring total. Equal prices are not an upgrade.
func IsUpgrade(currentPrice, newPrice decimal.Decimal) bool {
	return newPrice.GreaterThan(currentPrice)
}

// DetermineMode resolves the proration mode for a change. Upgrades default to
// immediate proration and may opt into end-of-period; downgrades always run
// at end of period so the member keeps the benefits already paid for.
func DetermineMode(isUpgrade bool, preference *types.ProrationMode) types.ProrationMode {
	if !isUpgrade {
		return types.ProrationModeEndOfPeriod
	}
	if preference != nil && *preference == types.ProrationModeEndOfPeriod {
		return types.ProrationModeEndOfPeriod
	}
	return types.ProrationModeProrateImmediately
}

// DailyRate is the per-day price of a plan over the given period length,
// rounded half-up at rate precision. Final amounts round at money precision.
func DailyRate(monthlyPrice decimal.Decimal, totalDays int) decimal.Decimal {
	if totalDays <= 0 {
		return decimal.Zero
	}
	return monthlyPrice.DivRound(decimal.NewFromInt(int64(totalDays)), types.RatePrecision)
}

// Calculate computes the proration result for the given parameters. Pure:
// no state, safe to call concurrently and repeatedly.
func Calculate(p Params) Result {
	totalDays := types.DaysBetween(p.PeriodStart, p.PeriodEnd)
	daysRemaining := types.DaysBetween(p.ChangeDate, p.PeriodEnd)

	switch p.Mode {
	case types.ProrationModeEndOfPeriod:
		return Result{
			Credit:        decimal.Zero,
			Charge:        decimal.Zero,
			Net:           decimal.Zero,
			EffectiveDate: types.ToDate(p.PeriodEnd),
			DaysRemaining: daysRemaining,
			TotalDays:     totalDays,
		}
	case types.ProrationModeNoProration:
		return Result{
			Credit:        decimal.Zero,
			Charge:        decimal.Zero,
			Net:           decimal.Zero,
			EffectiveDate: types.ToDate(p.ChangeDate),
			DaysRemaining: daysRemaining,
			TotalDays:     totalDays,
		}
	case types.ProrationModeFullPeriodCredit:
		credit := p.CurrentPlanPrice.Round(types.MoneyPrecision)
		charge := p.NewPlanPrice.Round(types.MoneyPrecision)
		return Result{
			Credit:        credit,
			Charge:        charge,
			Net:           charge.Sub(credit),
			EffectiveDate: types.ToDate(p.ChangeDate),
			DaysRemaining: daysRemaining,
			TotalDays:     totalDays,
		}
	}

	// PRORATE_IMMEDIATELY
	if totalDays <= 0 || daysRemaining <= 0 {
		return Result{
			Credit:        decimal.Zero,
			Charge:        decimal.Zero,
			Net:           decimal.Zero,
			EffectiveDate: types.ToDate(p.ChangeDate),
			DaysRemaining: daysRemaining,
			TotalDays:     totalDays,
		}
	}

	days := decimal.NewFromInt(int64(daysRemaining))
	credit := DailyRate(p.CurrentPlanPrice, totalDays).Mul(days).Round(types.MoneyPrecision)
	charge := DailyRate(p.NewPlanPrice, totalDays).Mul(days).Round(types.MoneyPrecision)

	return Result{
		Credit:        credit,
		Charge:        charge,
		Net:           charge.Sub(credit),
		EffectiveDate: types.ToDate(p.ChangeDate),
		DaysRemaining: daysRemaining,
		TotalDays:     totalDays,
	}
}

// FormatSummary renders a member-facing explanation of a plan change in the
// requested locale.
func FormatSummary(r Result, currency string, locale string) string {
	if locale == "ar" {
		switch {
		case r.Net.IsPositive():
			return fmt.Sprintf("مبلغ مستحق %s %s اعتباراً من %s", r.Net.StringFixed(types.MoneyPrecision), currency, r.EffectiveDate.Format("2006-01-02"))
		case r.Net.IsNegative():
			return fmt.Sprintf("رصيد لصالحك %s %s اعتباراً من %s", r.Net.Neg().StringFixed(types.MoneyPrecision), currency, r.EffectiveDate.Format("2006-01-02"))
		default:
			return fmt.Sprintf("لا مبالغ مستحقة، يسري التغيير في %s", r.EffectiveDate.Format("2006-01-02"))
		}
	}

	switch {
	case r.Net.IsPositive():
		return fmt.Sprintf("You will be charged %s %s, effective %s", r.Net.StringFixed(types.MoneyPrecision), currency, r.EffectiveDate.Format("2006-01-02"))
	case r.Net.IsNegative():
		return fmt.Sprintf("You will be credited %s %s, effective %s", r.Net.Neg().StringFixed(types.MoneyPrecision), currency, r.EffectiveDate.Format("2006-01-02"))
	default:
		return fmt.Sprintf("No charges apply, the change takes effect on %s", r.EffectiveDate.Format("2006-01-02"))
	}
}
