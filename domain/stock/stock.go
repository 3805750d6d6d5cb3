// Package stock implements the listed security aggregate. Descriptive
// properties and dividend rules are kept as effective dated histories, so
// "what was this stock called on date X" is answered from replayed events.
package stock

import (
	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/effective"
	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/core/es/assert"
)

const (
	Type            = "Stock"
	StapledType     = "StapledSecurity"
	PropertyASXCode = "asx_code"
)

type Stock struct {
	es.TrackedEntity

	stapled    bool
	properties effective.Properties[Properties]
	rules      effective.Properties[DividendRules]
}

func New(id uuid.UUID) *Stock {
	return &Stock{TrackedEntity: es.NewTrackedEntity(id)}
}

// NewStapled returns a blank stapled security, a stock whose units are
// several securities traded together.
func NewStapled(id uuid.UUID) *Stock {
	s := New(id)
	s.stapled = true
	return s
}

// Factory builds both stocks and stapled securities.
func Factory() *es.Factory[*Stock] {
	return es.NewFactory(New).Register(StapledType, NewStapled)
}

func (s *Stock) GetType() string {
	if s.stapled {
		return StapledType
	}
	return Type
}

func (s *Stock) IsStapled() bool { return s.stapled }

func (s *Stock) Apply(event es.Event) error {
	switch e := event.(type) {
	case StockListed:
		if err := s.properties.Change(e.ListingDate, e.Properties); err != nil {
			return err
		}
		return s.rules.Change(e.ListingDate, e.Rules)
	case StockPropertiesChanged:
		return s.properties.Change(e.ChangeDate, e.Properties)
	case DividendRulesChanged:
		return s.rules.Change(e.ChangeDate, e.Rules)
	case StockDelisted:
		if err := s.properties.End(e.DelistedDate); err != nil {
			return err
		}
		return s.rules.End(e.DelistedDate)
	default:
		return es.UnsupportedEvent(s, event)
	}
}

// StoredProperties exposes the current ASX code for lookups.
func (s *Stock) StoredProperties() map[string]string {
	cur, ok := s.properties.Current()
	if !ok {
		return nil
	}
	return map[string]string{PropertyASXCode: cur.Properties.ASXCode}
}

// === Commands ===

func validProperties(p Properties) assert.Cond {
	return assert.All(
		assert.Truef(ValidASXCode(p.ASXCode), "asx code %q is valid", p.ASXCode),
		assert.Truef(p.Name != "", "name is set"),
		assert.Truef(p.Category.Valid(), "category %q is valid", p.Category),
	)
}

func validRules(r DividendRules) assert.Cond {
	return assert.All(
		assert.Truef(!r.CompanyTaxRate.IsNegative() && r.CompanyTaxRate.LessThan(one), "company tax rate %s is within [0, 1)", r.CompanyTaxRate),
		assert.Truef(r.DividendRounding.Valid(), "dividend rounding %q is valid", r.DividendRounding),
		assert.Truef(r.DRPMethod.Valid(), "drp method %q is valid", r.DRPMethod),
	)
}

// isCurrentAt holds when d can still modify the open period.
func isCurrentAt[T any](p *effective.Properties[T], d date.Date) assert.Cond {
	cur, ok := p.Current()
	return assert.Truef(ok && cur.IsCurrent() && cur.Period.Contains(d), "%s is within the current period", d)
}

// List lists the stock from listingDate with the default dividend rules.
func (s *Stock) List(listingDate date.Date, props Properties) error {
	return s.Checked(
		assert.All(
			assert.Truef(s.properties.Len() == 0, "stock is not listed yet"),
			assert.Truef(!listingDate.IsZero(), "listing date is set"),
			validProperties(props),
		),
		es.ApplyAndPublishD(s, StockListed{
			BaseEvent:   es.NewBaseEvent(s),
			ListingDate: listingDate,
			Properties:  props,
			Rules:       DefaultDividendRules(),
		}),
	)
}

// ChangeProperties records new properties effective from changeDate.
func (s *Stock) ChangeProperties(changeDate date.Date, props Properties) error {
	return s.Checked(
		assert.All(isCurrentAt(&s.properties, changeDate), validProperties(props)),
		es.ApplyAndPublishD(s, StockPropertiesChanged{
			BaseEvent:  es.NewBaseEvent(s),
			ChangeDate: changeDate,
			Properties: props,
		}),
	)
}

// ChangeDividendRules records new dividend rules effective from changeDate.
func (s *Stock) ChangeDividendRules(changeDate date.Date, rules DividendRules) error {
	return s.Checked(
		assert.All(isCurrentAt(&s.rules, changeDate), validRules(rules)),
		es.ApplyAndPublishD(s, DividendRulesChanged{
			BaseEvent:  es.NewBaseEvent(s),
			ChangeDate: changeDate,
			Rules:      rules,
		}),
	)
}

// Delist ends the listing, delistedDate is the last listed day.
func (s *Stock) Delist(delistedDate date.Date) error {
	return s.Checked(
		assert.All(isCurrentAt(&s.properties, delistedDate), isCurrentAt(&s.rules, delistedDate)),
		es.ApplyAndPublishD(s, StockDelisted{
			BaseEvent:    es.NewBaseEvent(s),
			DelistedDate: delistedDate,
		}),
	)
}

// === Queries ===

func (s *Stock) Properties(d date.Date) (Properties, error) { return s.properties.ValueAt(d) }

// ClosestProperties falls back to the nearest period when d is outside the
// listing, which is what reports for delisted stocks want.
func (s *Stock) ClosestProperties(d date.Date) (Properties, error) {
	return s.properties.ClosestTo(d)
}

func (s *Stock) DividendRules(d date.Date) (DividendRules, error) { return s.rules.ValueAt(d) }

func (s *Stock) IsEffectiveAt(d date.Date) bool { return s.properties.IsEffectiveAt(d) }

// EffectivePeriod spans from the listing date to the delisting date, or to
// date.MaxDate while listed. ok is false for a stock never listed.
func (s *Stock) EffectivePeriod() (r date.Range, ok bool) {
	cur, ok := s.properties.Current()
	if !ok {
		return r, false
	}
	r.To = cur.Period.To
	for v := range s.properties.Values() {
		r.From = v.Period.From
	}
	return r, true
}

// PropertyHistory returns all property periods, most recent first.
func (s *Stock) PropertyHistory() []effective.Values[Properties] {
	var out []effective.Values[Properties]
	for v := range s.properties.Values() {
		out = append(out, v)
	}
	return out
}

// WasEverCalled reports whether the stock traded under name at any time.
func (s *Stock) WasEverCalled(name string) bool {
	return s.properties.Matches(func(p Properties) bool { return p.Name == name })
}
