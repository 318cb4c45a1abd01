package types

// Sort keys accepted by the aggregator.
const (
	SortByUnitsSold     = "units_sold"
	SortByUnitsReturned = "units_returned"
	SortByRevenue       = "revenue"
	SortByNetProfit     = "net_profit"
	SortByMargin        = "margin"
	SortByAvgPrice      = "avg_price"
)

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	CostRatio     float64  `json:"cost_ratio" yaml:"cost_ratio" toml:"cost_ratio"`
	SortBy        string   `json:"sort_by" yaml:"sort_by" toml:"sort_by"`
	SortAscending bool     `json:"sort_ascending" yaml:"sort_ascending" toml:"sort_ascending"`
	ReportName    string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType    []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir           string   `json:"dir" yaml:"dir" toml:"dir"`
}

// DefaultConfig returns the documented defaults: unit cost is taken as 60%
// of the average sale price, records are sorted by units sold, descending.
func DefaultConfig() *Config {
	return &Config{
		CostRatio:     0.6,
		SortBy:        SortByUnitsSold,
		SortAscending: false,
	}
}
