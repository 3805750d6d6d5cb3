package stock

import (
	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/es"
)

type (
	StockListed struct {
		es.BaseEvent
		ListingDate date.Date     `json:"listing_date"`
		Properties  Properties    `json:"properties"`
		Rules       DividendRules `json:"dividend_rules"`
	}

	StockPropertiesChanged struct {
		es.BaseEvent
		ChangeDate date.Date  `json:"change_date"`
		Properties Properties `json:"properties"`
	}

	DividendRulesChanged struct {
		es.BaseEvent
		ChangeDate date.Date     `json:"change_date"`
		Rules      DividendRules `json:"dividend_rules"`
	}

	StockDelisted struct {
		es.BaseEvent
		DelistedDate date.Date `json:"delisted_date"`
	}
)

func (StockListed) EventType() string            { return "stock.listed" }
func (StockPropertiesChanged) EventType() string { return "stock.properties_changed" }
func (DividendRulesChanged) EventType() string   { return "stock.dividend_rules_changed" }
func (StockDelisted) EventType() string          { return "stock.delisted" }

func RegisterEvents(r es.Registrar) {
	es.RegisterEvent[StockListed](r)
	es.RegisterEvent[StockPropertiesChanged](r)
	es.RegisterEvent[DividendRulesChanged](r)
	es.RegisterEvent[StockDelisted](r)
}
