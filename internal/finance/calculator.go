// Package finance derives the summary figures for a real-estate investment
// model. Computation is pure and unrounded; currency rounding happens in the
// renderer so derived formulas never compound rounding error.
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Intensity classifies how heavy a renovation is.
type Intensity string

const (
	IntensityLight  Intensity = "light"
	IntensityMedium Intensity = "medium"
	IntensityHeavy  Intensity = "heavy"
)

// Renovation cost per square meter, in EUR.
var costPerSquareMeter = map[Intensity]decimal.Decimal{
	IntensityLight:  decimal.NewFromInt(250),
	IntensityMedium: decimal.NewFromInt(750),
	IntensityHeavy:  decimal.NewFromInt(1500),
}

// RegionFlanders gets the reduced registration tax rate; every other region
// tag pays the standard rate.
const RegionFlanders = "flanders"

// Belgian acquisition cost parameters.
var (
	registrationRateFlanders = decimal.RequireFromString("0.03")
	registrationRateDefault  = decimal.RequireFromString("0.125")
	notaryFeeRate            = decimal.RequireFromString("0.015")
	notaryFeeFixed           = decimal.NewFromInt(1200)
)

// ErrInvalidInput marks an investment model the calculator cannot price.
var ErrInvalidInput = errors.New("invalid input")

// RenovationItem is one planned renovation: a surface in square meters and
// how heavily it will be renovated.
type RenovationItem struct {
	Surface   decimal.Decimal `json:"surface"`
	Intensity Intensity       `json:"intensity"`
}

// InvestmentInput is the client-submitted investment model. Optional numeric
// fields decode as zero when absent.
type InvestmentInput struct {
	PropertyPrice        decimal.Decimal  `json:"property_price"`
	PersonalContribution decimal.Decimal  `json:"personal_contribution"`
	Region               string           `json:"region"`
	Renovations          []RenovationItem `json:"renovations"`
	MonthlyRent          decimal.Decimal  `json:"monthly_rent"`
	OtherMonthlyIncome   decimal.Decimal  `json:"other_monthly_income"`
	VacancyRate          decimal.Decimal  `json:"vacancy_rate"` // percent
	PropertyTax          decimal.Decimal  `json:"property_tax"`
	Insurance            decimal.Decimal  `json:"insurance"`
	Maintenance          decimal.Decimal  `json:"maintenance"`
	CoOwnershipFees      decimal.Decimal  `json:"co_ownership_fees"` // monthly
}

// Summary holds the derived figures, unrounded.
type Summary struct {
	RenovationCost       decimal.Decimal `json:"renovation_cost"`
	RegistrationTax      decimal.Decimal `json:"registration_tax"`
	NotaryFees           decimal.Decimal `json:"notary_fees"`
	TotalProjectCost     decimal.Decimal `json:"total_project_cost"`
	InitialCashOutlay    decimal.Decimal `json:"initial_cash_outlay"`
	GrossAnnualIncome    decimal.Decimal `json:"gross_annual_income"`
	EffectiveGrossIncome decimal.Decimal `json:"effective_gross_income"`
	TotalAnnualExpenses  decimal.Decimal `json:"total_annual_expenses"`
	NetOperatingIncome   decimal.Decimal `json:"net_operating_income"`
}

var (
	one     = decimal.NewFromInt(1)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// Compute derives the summary figures from an investment model. Pure: no I/O
// and no mutation of the input.
func Compute(in InvestmentInput) (Summary, error) {
	renovation := decimal.Zero
	for i, item := range in.Renovations {
		if item.Surface.IsNegative() {
			return Summary{}, fmt.Errorf("%w: renovation %d: surface must be non-negative", ErrInvalidInput, i)
		}
		rate, ok := costPerSquareMeter[item.Intensity]
		if !ok {
			return Summary{}, fmt.Errorf("%w: renovation %d: unknown intensity %q", ErrInvalidInput, i, item.Intensity)
		}
		renovation = renovation.Add(item.Surface.Mul(rate))
	}

	taxRate := registrationRateDefault
	if in.Region == RegionFlanders {
		taxRate = registrationRateFlanders
	}
	registrationTax := in.PropertyPrice.Mul(taxRate)
	notaryFees := in.PropertyPrice.Mul(notaryFeeRate).Add(notaryFeeFixed)

	grossIncome := in.MonthlyRent.Add(in.OtherMonthlyIncome).Mul(twelve)
	effectiveIncome := grossIncome.Mul(one.Sub(in.VacancyRate.Div(hundred)))
	expenses := in.PropertyTax.
		Add(in.Insurance).
		Add(in.Maintenance).
		Add(in.CoOwnershipFees.Mul(twelve))

	return Summary{
		RenovationCost:       renovation,
		RegistrationTax:      registrationTax,
		NotaryFees:           notaryFees,
		TotalProjectCost:     in.PropertyPrice.Add(registrationTax).Add(notaryFees).Add(renovation),
		InitialCashOutlay:    in.PersonalContribution.Add(registrationTax).Add(notaryFees),
		GrossAnnualIncome:    grossIncome,
		EffectiveGrossIncome: effectiveIncome,
		TotalAnnualExpenses:  expenses,
		NetOperatingIncome:   effectiveIncome.Sub(expenses),
	}, nil
}
