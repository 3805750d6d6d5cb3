package stock

import (
	"regexp"

	"github.com/shopspring/decimal"
)

type Category string

const (
	Shares      Category = "Shares"
	Trust       Category = "Trust"
	ManagedFund Category = "ManagedFund"
	NonEquity   Category = "NonEquity"
	Stapled     Category = "StapledSecurity"
)

func (c Category) Valid() bool {
	switch c {
	case Shares, Trust, ManagedFund, NonEquity, Stapled:
		return true
	}
	return false
}

// RoundingRule decides how dividend amounts are rounded to cents.
type RoundingRule string

const (
	RoundNormal RoundingRule = "Round"
	RoundDown   RoundingRule = "Truncate"
	RoundUp     RoundingRule = "Ceiling"
)

func (r RoundingRule) Valid() bool { return r == RoundNormal || r == RoundDown || r == RoundUp }

// DRPMethod decides what happens to the remainder of a reinvested dividend.
type DRPMethod string

const (
	DRPRound             DRPMethod = "Round"
	DRPRoundDown         DRPMethod = "RoundDown"
	DRPRoundUp           DRPMethod = "RoundUp"
	DRPRetainCashBalance DRPMethod = "RetainCashBalance"
)

func (m DRPMethod) Valid() bool {
	switch m {
	case DRPRound, DRPRoundDown, DRPRoundUp, DRPRetainCashBalance:
		return true
	}
	return false
}

// Properties are the descriptive attributes of a listed security.
type Properties struct {
	ASXCode  string   `json:"asx_code"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// DividendRules are the dividend handling attributes of a listed security.
type DividendRules struct {
	CompanyTaxRate   decimal.Decimal `json:"company_tax_rate"`
	DividendRounding RoundingRule    `json:"dividend_rounding"`
	DRPActive        bool            `json:"drp_active"`
	DRPMethod        DRPMethod       `json:"drp_method"`
}

// DefaultDividendRules apply from the listing date until changed.
func DefaultDividendRules() DividendRules {
	return DividendRules{
		CompanyTaxRate:   decimal.RequireFromString("0.30"),
		DividendRounding: RoundNormal,
		DRPActive:        false,
		DRPMethod:        DRPRound,
	}
}

// Equal compares rates numerically, 0.3 equals 0.30.
func (r DividendRules) Equal(o DividendRules) bool {
	return r.CompanyTaxRate.Equal(o.CompanyTaxRate) &&
		r.DividendRounding == o.DividendRounding &&
		r.DRPActive == o.DRPActive &&
		r.DRPMethod == o.DRPMethod
}

var asxCode = regexp.MustCompile(`^[A-Z0-9]{3,6}$`)

// ValidASXCode reports whether code looks like an ASX ticker.
func ValidASXCode(code string) bool { return asxCode.MatchString(code) }

var one = decimal.NewFromInt(1)
