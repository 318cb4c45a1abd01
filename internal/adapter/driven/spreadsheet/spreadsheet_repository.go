package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wb-tools/wb-report/internal/domain/entity"
	"github.com/wb-tools/wb-report/internal/domain/repository"
	"github.com/wb-tools/wb-report/internal/shared/types"
)

// Column headers of the Wildberries sales export. The names are the data
// contract of the marketplace and are matched exactly after trimming.
const (
	ColArticle    = "Артикул поставщика"
	ColDocType    = "Тип документа"
	ColQuantity   = "Кол-во"
	ColPrice      = "Цена розничная"
	ColDelivery   = "Услуги по доставке товара покупателю"
	ColPenalty    = "Общая сумма штрафов"
	ColRemittance = "К перечислению Продавцу за реализованный Товар"
	ColTitle      = "Название"
	ColBrand      = "Бренд" // optional
)

var requiredColumns = []string{
	ColArticle,
	ColDocType,
	ColQuantity,
	ColPrice,
	ColDelivery,
	ColPenalty,
	ColRemittance,
	ColTitle,
}

// SpreadsheetRepositoryImpl implements SpreadsheetRepository on excelize.
type SpreadsheetRepositoryImpl struct{}

// NewSpreadsheetRepository creates a new SpreadsheetRepository implementation.
func NewSpreadsheetRepository() repository.SpreadsheetRepository {
	return &SpreadsheetRepositoryImpl{}
}

// LoadTransactions reads the first sheet of the export workbook. Row 1 must
// be the header row; every later row becomes one Transaction. Rows whose
// cells are all blank are skipped.
func (r *SpreadsheetRepositoryImpl) LoadTransactions(path string) ([]entity.Transaction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, types.ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, types.ErrMissingHeader
	}

	columnMap, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}
	brandIdx, hasBrand := columnMap[ColBrand]

	transactions := make([]entity.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		// GetRows omits trailing empty cells, so indexes are range-checked.
		cell := func(idx int) string {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		tx := entity.Transaction{
			Article: cell(columnMap[ColArticle]),
			DocType: cell(columnMap[ColDocType]),
			Title:   cell(columnMap[ColTitle]),
		}
		if hasBrand {
			tx.Brand = cell(brandIdx)
		}

		if tx.Quantity, err = parseInt(cell(columnMap[ColQuantity])); err != nil {
			return nil, rowError(i, ColQuantity, err)
		}
		if tx.RetailPrice, err = parseFloat(cell(columnMap[ColPrice])); err != nil {
			return nil, rowError(i, ColPrice, err)
		}
		if tx.DeliveryFee, err = parseFloat(cell(columnMap[ColDelivery])); err != nil {
			return nil, rowError(i, ColDelivery, err)
		}
		if tx.Penalty, err = parseFloat(cell(columnMap[ColPenalty])); err != nil {
			return nil, rowError(i, ColPenalty, err)
		}
		if tx.Remittance, err = parseFloat(cell(columnMap[ColRemittance])); err != nil {
			return nil, rowError(i, ColRemittance, err)
		}

		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// mapColumns resolves header names to column indexes and verifies that every
// required column is present.
func mapColumns(header []string) (map[string]int, error) {
	columnMap := make(map[string]int, len(header))
	for idx, name := range header {
		columnMap[strings.TrimSpace(name)] = idx
	}
	for _, name := range requiredColumns {
		if _, ok := columnMap[name]; !ok {
			return nil, fmt.Errorf("required column %q not found in the report header", name)
		}
	}
	return columnMap, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func rowError(rowIdx int, column string, err error) error {
	// rowIdx is zero-based over data rows; +2 converts to the sheet row number.
	return fmt.Errorf("row %d, column %q: %w", rowIdx+2, column, err)
}

// parseFloat parses a numeric cell, tolerating thousands separators. A blank
// cell reads as zero, matching how the marketplace export leaves unused
// monetary fields empty.
func parseFloat(s string) (float64, error) {
	s = stripSeparators(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	s = stripSeparators(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		// Some exports format quantities as "5.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, err
		}
		return int(f), nil
	}
	return v, nil
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}
