package entity

import "time"

// TotalMarker is the article value of the synthetic grand-total row,
// as it appears in the rendered workbook.
const TotalMarker = "ИТОГО:"

// ProductSummary is the aggregated result for one supplier article.
// Monetary fields are rounded to 2 decimals when the record is created;
// the grand total sums these already-rounded values.
type ProductSummary struct {
	Article       string  `json:"article"`
	Brand         string  `json:"brand"`
	Title         string  `json:"title"`
	UnitsSold     int     `json:"units_sold"`
	UnitsReturned int     `json:"units_returned"`
	AvgSalePrice  float64 `json:"avg_sale_price"`
	UnitCost      float64 `json:"unit_cost"`
	TotalCost     float64 `json:"total_cost"`
	Logistics     float64 `json:"logistics"`
	Penalties     float64 `json:"penalties"`
	TotalExpenses float64 `json:"total_expenses"`
	Revenue       float64 `json:"revenue"`
	NetProfit     float64 `json:"net_profit"`
	MarginPercent float64 `json:"margin_percent"`
	IsTotal       bool    `json:"is_total"`
}

// SummaryReport is the totalized sequence handed to the renderers:
// aggregated records in sort order with the grand-total row last.
type SummaryReport struct {
	Rows        []ProductSummary `json:"rows"`
	GeneratedAt time.Time        `json:"generated_at"`
	CostRatio   float64          `json:"cost_ratio"`
}

// Products returns the per-article records without the grand-total row.
func (r *SummaryReport) Products() []ProductSummary {
	if n := len(r.Rows); n > 0 && r.Rows[n-1].IsTotal {
		return r.Rows[:n-1]
	}
	return r.Rows
}

// Total returns the grand-total row, or nil if the report has none.
func (r *SummaryReport) Total() *ProductSummary {
	if n := len(r.Rows); n > 0 && r.Rows[n-1].IsTotal {
		return &r.Rows[n-1]
	}
	return nil
}
