package repository

import (
	"github.com/wb-tools/wb-report/internal/domain/entity"
)

// SpreadsheetRepository loads the raw marketplace export into memory.
type SpreadsheetRepository interface {
	// LoadTransactions reads every data row of the export workbook.
	// The full table is materialized at once; there is no streaming.
	LoadTransactions(path string) ([]entity.Transaction, error)
}
