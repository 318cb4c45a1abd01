package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/wb-tools/wb-report/internal/domain/entity"
	"github.com/wb-tools/wb-report/internal/domain/repository"
)

// SheetName is the fixed name of the summary worksheet.
const SheetName = "Сводный отчет"

const reportTitle = "СВОДНЫЙ ОТЧЕТ ПО ПРОДАЖАМ WILDBERRIES"

// columnHeaders are the 14 output columns, A through N.
var columnHeaders = []string{
	"Артикул",
	"Бренд",
	"Название товара",
	"Продано (шт)",
	"Возвращено (шт)",
	"Средняя цена продажи",
	"Себестоимость единицы",
	"Общая себестоимость",
	"Логистика",
	"Штрафы",
	"Общие расходы",
	"Выручка",
	"Чистая прибыль",
	"Рентабельность, %",
}

// Fixed per-column widths of the summary sheet.
var columnWidths = map[string]float64{
	"A": 15, "B": 15, "C": 50, "D": 12, "E": 12,
	"F": 15, "G": 15, "H": 15, "I": 12, "J": 10,
	"K": 14, "L": 14, "M": 14, "N": 14,
}

// ExportRepositoryImpl implements the ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new ExportRepository implementation.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// SummaryPath derives the workbook output path from the input file location:
// same directory, localized prefix, input stem, generation date.
func SummaryPath(inputPath string, generatedAt time.Time) string {
	dir := filepath.Dir(inputPath)
	stem := filepath.Base(inputPath)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	name := fmt.Sprintf("Сводный_отчет_%s_%s.xlsx", stem, generatedAt.Format("02.01.2006"))
	return filepath.Join(dir, name)
}

// summaryStyles holds the style IDs used by the workbook renderer.
type summaryStyles struct {
	title     int
	subtitle  int
	header    int
	text      int
	integer   int
	money     int
	percent   int
	profitPos int
	profitNeg int

	totalText      int
	totalInteger   int
	totalMoney     int
	totalPercent   int
	totalProfitPos int
	totalProfitNeg int
}

func buildSummaryStyles(f *excelize.File) (*summaryStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	moneyFmt := "#,##0.00"
	pctFmt := `0.00"%"`
	grayFill := excelize.Fill{Type: "pattern", Color: []string{"E7E6E6"}, Pattern: 1}

	var s summaryStyles
	var err error

	add := func(style *excelize.Style) int {
		if err != nil {
			return 0
		}
		var id int
		id, err = f.NewStyle(style)
		return id
	}

	s.title = add(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	s.subtitle = add(&excelize.Style{
		Font: &excelize.Font{Italic: true, Size: 10, Color: "666666"},
	})
	s.header = add(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thin,
	})

	left := &excelize.Alignment{Horizontal: "left", Vertical: "center"}
	right := &excelize.Alignment{Horizontal: "right", Vertical: "center"}

	s.text = add(&excelize.Style{Alignment: left, Border: thin})
	s.integer = add(&excelize.Style{Alignment: right, Border: thin})
	s.money = add(&excelize.Style{Alignment: right, Border: thin, CustomNumFmt: &moneyFmt})
	s.percent = add(&excelize.Style{Alignment: right, Border: thin, CustomNumFmt: &pctFmt})
	s.profitPos = add(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "008000"},
		Alignment: right, Border: thin, CustomNumFmt: &moneyFmt,
	})
	s.profitNeg = add(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FF0000"},
		Alignment: right, Border: thin, CustomNumFmt: &moneyFmt,
	})

	totalFont := &excelize.Font{Bold: true, Size: 11}
	s.totalText = add(&excelize.Style{Font: totalFont, Fill: grayFill, Alignment: left, Border: thin})
	s.totalInteger = add(&excelize.Style{Font: totalFont, Fill: grayFill, Alignment: right, Border: thin})
	s.totalMoney = add(&excelize.Style{Font: totalFont, Fill: grayFill, Alignment: right, Border: thin, CustomNumFmt: &moneyFmt})
	s.totalPercent = add(&excelize.Style{Font: totalFont, Fill: grayFill, Alignment: right, Border: thin, CustomNumFmt: &pctFmt})
	s.totalProfitPos = add(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "008000"},
		Fill: grayFill, Alignment: right, Border: thin, CustomNumFmt: &moneyFmt,
	})
	s.totalProfitNeg = add(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FF0000"},
		Fill: grayFill, Alignment: right, Border: thin, CustomNumFmt: &moneyFmt,
	})

	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExportToExcel renders the totalized report into the styled summary
// workbook: merged title and subtitle bands, a frozen header row, bordered
// data rows with per-column formats, conditional coloring of net profit and
// a shaded grand-total row.
func (r *ExportRepositoryImpl) ExportToExcel(report *entity.SummaryReport, inputPath string) (string, error) {
	outputPath := SummaryPath(inputPath, report.GeneratedAt)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return "", fmt.Errorf("error naming summary sheet: %w", err)
	}

	styles, err := buildSummaryStyles(f)
	if err != nil {
		return "", fmt.Errorf("error building cell styles: %w", err)
	}

	// Title band, A1:N1.
	f.SetCellValue(SheetName, "A1", reportTitle)
	f.MergeCell(SheetName, "A1", "N1")
	f.SetCellStyle(SheetName, "A1", "N1", styles.title)
	f.SetRowHeight(SheetName, 1, 30)

	// Subtitle band with generation timestamp and the active cost ratio.
	subtitle := fmt.Sprintf("Дата формирования: %s | Себестоимость = %d%% от средней цены",
		report.GeneratedAt.Format("02.01.2006 15:04"), int(report.CostRatio*100))
	f.SetCellValue(SheetName, "A2", subtitle)
	f.MergeCell(SheetName, "A2", "N2")
	f.SetCellStyle(SheetName, "A2", "N2", styles.subtitle)
	f.SetRowHeight(SheetName, 2, 20)

	// Header row.
	headerRow := make([]interface{}, len(columnHeaders))
	for i, h := range columnHeaders {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A3", &headerRow); err != nil {
		return "", fmt.Errorf("error writing header row: %w", err)
	}
	f.SetCellStyle(SheetName, "A3", "N3", styles.header)
	f.SetRowHeight(SheetName, 3, 40)

	// Data rows, the grand total last.
	for i, row := range report.Rows {
		rowNum := 4 + i
		if err := writeSummaryRow(f, styles, rowNum, row); err != nil {
			return "", err
		}
	}

	for col, width := range columnWidths {
		f.SetColWidth(SheetName, col, col, width)
	}

	// Keep title, subtitle and header visible while scrolling the data.
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      3,
		TopLeftCell: "A4",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return "", fmt.Errorf("error freezing header rows: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("error writing summary workbook: %w", err)
	}

	return filepath.Abs(outputPath)
}

func writeSummaryRow(f *excelize.File, styles *summaryStyles, rowNum int, row entity.ProductSummary) error {
	var avgPrice, unitCost interface{} = row.AvgSalePrice, row.UnitCost
	if row.IsTotal {
		// A per-unit average is not meaningful across products.
		avgPrice, unitCost = "", ""
	}

	values := []interface{}{
		row.Article,
		row.Brand,
		row.Title,
		row.UnitsSold,
		row.UnitsReturned,
		avgPrice,
		unitCost,
		row.TotalCost,
		row.Logistics,
		row.Penalties,
		row.TotalExpenses,
		row.Revenue,
		row.NetProfit,
		row.MarginPercent,
	}
	anchor, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, anchor, &values); err != nil {
		return fmt.Errorf("error writing summary row %d: %w", rowNum, err)
	}

	text, integer, money, percent := styles.text, styles.integer, styles.money, styles.percent
	if row.IsTotal {
		text, integer, money, percent = styles.totalText, styles.totalInteger, styles.totalMoney, styles.totalPercent
	}

	cell := func(col string) string { return col + strconv.Itoa(rowNum) }
	f.SetCellStyle(SheetName, cell("A"), cell("C"), text)
	f.SetCellStyle(SheetName, cell("D"), cell("E"), integer)
	f.SetCellStyle(SheetName, cell("F"), cell("L"), money)
	f.SetCellStyle(SheetName, cell("N"), cell("N"), percent)

	// Net profit is colored red when negative, green when positive and left
	// in the row's default style when exactly zero.
	profit := money
	switch {
	case row.NetProfit < 0 && row.IsTotal:
		profit = styles.totalProfitNeg
	case row.NetProfit > 0 && row.IsTotal:
		profit = styles.totalProfitPos
	case row.NetProfit < 0:
		profit = styles.profitNeg
	case row.NetProfit > 0:
		profit = styles.profitPos
	}
	f.SetCellStyle(SheetName, cell("M"), cell("M"), profit)

	return nil
}

// --- Supplemental flat exports (optional report types) ---

// ExportToCSV writes the summary table as a plain CSV file.
func (r *ExportRepositoryImpl) ExportToCSV(report *entity.SummaryReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(columnHeaders); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range report.Rows {
		avgPrice, unitCost := formatMoney(row.AvgSalePrice), formatMoney(row.UnitCost)
		if row.IsTotal {
			avgPrice, unitCost = "", ""
		}
		record := []string{
			row.Article,
			row.Brand,
			row.Title,
			strconv.Itoa(row.UnitsSold),
			strconv.Itoa(row.UnitsReturned),
			avgPrice,
			unitCost,
			formatMoney(row.TotalCost),
			formatMoney(row.Logistics),
			formatMoney(row.Penalties),
			formatMoney(row.TotalExpenses),
			formatMoney(row.Revenue),
			formatMoney(row.NetProfit),
			formatMoney(row.MarginPercent),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

// ExportToJSON writes the totalized report as indented JSON.
func (r *ExportRepositoryImpl) ExportToJSON(report *entity.SummaryReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToPDF writes a one-page digest of the summary. The gofpdf core fonts
// are Latin-only, so Cyrillic article titles survive only as far as the
// cp1252 translator can carry them.
func (r *ExportRepositoryImpl) ExportToPDF(report *entity.SummaryReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{54, 96, 146}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Wildberries Sales Summary"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	meta := fmt.Sprintf("  Generated: %s  |  Unit cost = %d%% of average sale price",
		report.GeneratedAt.Format("2006-01-02 15:04"), int(report.CostRatio*100))
	pdf.CellFormat(0, 8, tr(meta), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	if total := report.Total(); total != nil {
		summary := fmt.Sprintf(
			"Articles: %d\nUnits sold: %d\nUnits returned: %d\n\nTotal cost: %s\nLogistics: %s\nPenalties: %s\nTotal expenses: %s\n\nRevenue: %s\nNet profit: %s\nMargin: %s%%",
			len(report.Products()), total.UnitsSold, total.UnitsReturned,
			formatMoney(total.TotalCost), formatMoney(total.Logistics),
			formatMoney(total.Penalties), formatMoney(total.TotalExpenses),
			formatMoney(total.Revenue), formatMoney(total.NetProfit),
			formatMoney(total.MarginPercent),
		)
		drawSection("Totals", summary)
	}

	var lines string
	limit := len(report.Products())
	if limit > 30 {
		limit = 30
	}
	for i := 0; i < limit; i++ {
		p := report.Products()[i]
		lines += fmt.Sprintf("%s | sold %d | revenue %s | profit %s\n",
			p.Article, p.UnitsSold, formatMoney(p.Revenue), formatMoney(p.NetProfit))
	}
	if n := len(report.Products()); n > limit {
		lines += fmt.Sprintf("... (+%d more)\n", n-limit)
	}
	drawSection("Top Articles", lines)

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	footerText := fmt.Sprintf("Generated by wb-report | %s", time.Now().Format("2006-01-02"))
	pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// generateFilename builds a unique timestamped file name for the flat export
// formats and makes sure the output directory exists.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
