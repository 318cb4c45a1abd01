package entity

// Document type values as they appear in the Wildberries sales export.
const (
	DocTypeSale   = "Продажа"
	DocTypeReturn = "Возврат"
)

// Transaction is one row of the marketplace sales/returns export.
// Rows are immutable after loading; the aggregation stages never write
// back into the transaction table.
type Transaction struct {
	Article     string  `json:"article"`      // supplier article (product identifier)
	DocType     string  `json:"doc_type"`     // Продажа, Возврат or any other document type
	Quantity    int     `json:"quantity"`
	RetailPrice float64 `json:"retail_price"`
	DeliveryFee float64 `json:"delivery_fee"` // delivery-to-customer service fee
	Penalty     float64 `json:"penalty"`
	Remittance  float64 `json:"remittance"`   // amount remitted to the seller
	Title       string  `json:"title"`
	Brand       string  `json:"brand"`
}

// IsSale reports whether the row is a sale document.
func (t Transaction) IsSale() bool { return t.DocType == DocTypeSale }

// IsReturn reports whether the row is a return document.
func (t Transaction) IsReturn() bool { return t.DocType == DocTypeReturn }
