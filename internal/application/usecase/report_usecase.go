package usecase

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/wb-tools/wb-report/internal/domain/entity"
	"github.com/wb-tools/wb-report/internal/domain/repository"
	"github.com/wb-tools/wb-report/internal/shared/types"
)

// progressStep is how many articles are aggregated between progress lines.
const progressStep = 50

// ReportUseCase drives the whole pipeline: load, aggregate, totalize,
// render, digest. It runs once per invocation; the first error aborts it.
type ReportUseCase struct {
	spreadsheetRepo repository.SpreadsheetRepository
	exportRepo      repository.ExportRepository
	configRepo      repository.ConfigRepository
	console         types.ConsoleInterface
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(
	spreadsheetRepo repository.SpreadsheetRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
) *ReportUseCase {
	return &ReportUseCase{
		spreadsheetRepo: spreadsheetRepo,
		exportRepo:      exportRepo,
		configRepo:      configRepo,
		console:         console,
	}
}

// ResolveConfig merges the documented defaults, the optional config file and
// the explicitly set flags, in that order of precedence.
func (uc *ReportUseCase) ResolveConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg := types.DefaultConfig()

	if args.ConfigFile != "" {
		fileCfg, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if args.CostRatio != nil {
		cfg.CostRatio = *args.CostRatio
	}
	if args.SortBy != nil {
		cfg.SortBy = *args.SortBy
	}
	if args.SortAscending != nil {
		cfg.SortAscending = *args.SortAscending
	}
	if args.ReportName != "" {
		cfg.ReportName = args.ReportName
	}
	if len(args.ReportType) > 0 {
		cfg.ReportType = args.ReportType
	}
	if args.Dir != "" {
		cfg.Dir = args.Dir
	}

	return cfg, nil
}

// RunReport executes the pipeline for one input file. A missing input file
// is reported and swallowed: no output is produced and no error escapes.
// Any later failure propagates to the caller's catch-all.
func (uc *ReportUseCase) RunReport(ctx context.Context, args *types.CLIArgs) error {
	if args.InputPath == "" {
		return types.ErrNoInputPath
	}

	if _, err := os.Stat(args.InputPath); os.IsNotExist(err) {
		uc.console.LogError("File not found: %s", args.InputPath)
		return nil
	}

	cfg, err := uc.ResolveConfig(args)
	if err != nil {
		return err
	}

	status := uc.console.Status(fmt.Sprintf("Loading %s...", args.InputPath))

	transactions, err := uc.spreadsheetRepo.LoadTransactions(args.InputPath)
	if err != nil {
		status.Stop()
		return err
	}
	status.Update("Aggregating articles...")
	uc.console.LogInfo("Loaded %d rows, %d unique articles", len(transactions), countArticles(transactions))

	summaries := uc.AggregateTransactions(transactions, cfg)
	report := uc.Totalize(summaries, cfg)

	status.Update("Rendering summary workbook...")
	outputPath, err := uc.exportRepo.ExportToExcel(report, args.InputPath)
	if err != nil {
		status.Stop()
		return err
	}
	status.Stop()

	uc.exportExtraFormats(report, args.InputPath, cfg)

	uc.printDigest(report)

	uc.console.LogSuccess("Summary report saved: %s", outputPath)
	return nil
}

// AggregateTransactions groups rows by supplier article (first-appearance
// order) and computes one summary record per article, then sorts the result
// by the configured column. The input table is never mutated.
func (uc *ReportUseCase) AggregateTransactions(transactions []entity.Transaction, cfg *types.Config) []entity.ProductSummary {
	// Single grouping pass: article -> indices of its rows.
	order := make([]string, 0)
	groups := make(map[string][]int)
	for i, tx := range transactions {
		if _, seen := groups[tx.Article]; !seen {
			order = append(order, tx.Article)
		}
		groups[tx.Article] = append(groups[tx.Article], i)
	}

	summaries := make([]entity.ProductSummary, 0, len(order))
	for n, article := range order {
		summaries = append(summaries, uc.summarizeArticle(article, transactions, groups[article], cfg.CostRatio))
		if (n+1)%progressStep == 0 {
			uc.console.LogInfo("Processed %d/%d articles", n+1, len(order))
		}
	}

	uc.sortSummaries(summaries, cfg)
	return summaries
}

// summarizeArticle computes the per-article metrics. The sale-row /
// all-row split is the business rule: average price and units sold come
// from sale documents only, while logistics, penalties and revenue sum
// across every document type.
func (uc *ReportUseCase) summarizeArticle(article string, transactions []entity.Transaction, rowIdx []int, costRatio float64) entity.ProductSummary {
	var (
		unitsSold, unitsReturned      int
		priceSum                      float64
		saleRows                      int
		logistics, penalties, revenue float64
	)

	first := transactions[rowIdx[0]]
	for _, i := range rowIdx {
		tx := transactions[i]
		switch {
		case tx.IsSale():
			unitsSold += tx.Quantity
			priceSum += tx.RetailPrice
			saleRows++
		case tx.IsReturn():
			unitsReturned += tx.Quantity
		}
		// Not filtered by document type.
		logistics += tx.DeliveryFee
		penalties += tx.Penalty
		revenue += tx.Remittance
	}

	var avgPrice float64
	if saleRows > 0 {
		avgPrice = priceSum / float64(saleRows)
	}

	// Rounding here is authoritative: the grand total sums these already
	// rounded values, and derived fields build on the rounded components so
	// the expense/profit identities hold exactly.
	s := entity.ProductSummary{
		Article:       article,
		Brand:         first.Brand,
		Title:         first.Title,
		UnitsSold:     unitsSold,
		UnitsReturned: unitsReturned,
		AvgSalePrice:  round2(avgPrice),
		UnitCost:      round2(avgPrice * costRatio),
		Logistics:     round2(logistics),
		Penalties:     round2(penalties),
		Revenue:       round2(revenue),
	}
	s.TotalCost = round2(s.UnitCost * float64(s.UnitsSold))
	s.TotalExpenses = round2(s.TotalCost + s.Logistics + s.Penalties)
	s.NetProfit = round2(s.Revenue - s.TotalExpenses)
	if s.Revenue > 0 {
		s.MarginPercent = round2(s.NetProfit / s.Revenue * 100)
	}
	return s
}

// sortSummaries orders the records by the configured column, descending by
// default, stable so that equal keys keep their first-appearance order.
func (uc *ReportUseCase) sortSummaries(summaries []entity.ProductSummary, cfg *types.Config) {
	key := sortKey(cfg.SortBy)
	if key == nil {
		uc.console.LogWarning("Unknown sort column %q, sorting by %s", cfg.SortBy, types.SortByUnitsSold)
		key = sortKey(types.SortByUnitsSold)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if cfg.SortAscending {
			return key(summaries[i]) < key(summaries[j])
		}
		return key(summaries[i]) > key(summaries[j])
	})
}

func sortKey(column string) func(entity.ProductSummary) float64 {
	switch column {
	case types.SortByUnitsSold:
		return func(s entity.ProductSummary) float64 { return float64(s.UnitsSold) }
	case types.SortByUnitsReturned:
		return func(s entity.ProductSummary) float64 { return float64(s.UnitsReturned) }
	case types.SortByRevenue:
		return func(s entity.ProductSummary) float64 { return s.Revenue }
	case types.SortByNetProfit:
		return func(s entity.ProductSummary) float64 { return s.NetProfit }
	case types.SortByMargin:
		return func(s entity.ProductSummary) float64 { return s.MarginPercent }
	case types.SortByAvgPrice:
		return func(s entity.ProductSummary) float64 { return s.AvgSalePrice }
	}
	return nil
}

// Totalize appends the synthetic grand-total row to a copy of the sorted
// records and wraps everything into the report handed to the renderers.
// Sums run over the already-rounded per-record values.
func (uc *ReportUseCase) Totalize(summaries []entity.ProductSummary, cfg *types.Config) *entity.SummaryReport {
	total := entity.ProductSummary{
		Article: entity.TotalMarker,
		IsTotal: true,
	}
	for _, s := range summaries {
		total.UnitsSold += s.UnitsSold
		total.UnitsReturned += s.UnitsReturned
		total.TotalCost += s.TotalCost
		total.Logistics += s.Logistics
		total.Penalties += s.Penalties
		total.TotalExpenses += s.TotalExpenses
		total.Revenue += s.Revenue
		total.NetProfit += s.NetProfit
	}
	total.TotalCost = round2(total.TotalCost)
	total.Logistics = round2(total.Logistics)
	total.Penalties = round2(total.Penalties)
	total.TotalExpenses = round2(total.TotalExpenses)
	total.Revenue = round2(total.Revenue)
	total.NetProfit = round2(total.NetProfit)
	if total.Revenue > 0 {
		total.MarginPercent = round2(total.NetProfit / total.Revenue * 100)
	}

	rows := make([]entity.ProductSummary, 0, len(summaries)+1)
	rows = append(rows, summaries...)
	rows = append(rows, total)

	return &entity.SummaryReport{
		Rows:        rows,
		GeneratedAt: time.Now(),
		CostRatio:   cfg.CostRatio,
	}
}

// exportExtraFormats writes the optional csv/json/pdf copies. A failed
// extra export is logged but does not abort the pipeline: the workbook has
// already been persisted.
func (uc *ReportUseCase) exportExtraFormats(report *entity.SummaryReport, inputPath string, cfg *types.Config) {
	if len(cfg.ReportType) == 0 {
		return
	}

	name := cfg.ReportName
	if name == "" {
		stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		name = "summary_" + stem
	}
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}

	for _, reportType := range cfg.ReportType {
		switch strings.ToLower(reportType) {
		case "csv":
			path, err := uc.exportRepo.ExportToCSV(report, name, dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", path)
			}
		case "json":
			path, err := uc.exportRepo.ExportToJSON(report, name, dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", path)
			}
		case "pdf":
			path, err := uc.exportRepo.ExportToPDF(report, name, dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", path)
			}
		default:
			uc.console.LogWarning("Unknown report type %q (expected csv, json or pdf)", reportType)
		}
	}
}

// printDigest prints the fixed-format statistics digest from the totalized
// report. Pure read-only consumer; the workbook is already on disk.
func (uc *ReportUseCase) printDigest(report *entity.SummaryReport) {
	total := report.Total()
	if total == nil {
		return
	}

	rule := strings.Repeat("=", 70)

	returnRate := "n/a"
	if total.UnitsSold > 0 {
		returnRate = fmt.Sprintf("%.2f%%", float64(total.UnitsReturned)/float64(total.UnitsSold)*100)
	}

	profit := fmt.Sprintf("%s руб", formatAmount(total.NetProfit))
	switch {
	case total.NetProfit > 0:
		profit = pterm.FgGreen.Sprint(profit)
	case total.NetProfit < 0:
		profit = pterm.FgRed.Sprint(profit)
	}

	uc.console.Println()
	uc.console.Println(rule)
	uc.console.Println(">>> СТАТИСТИКА")
	uc.console.Println(rule)
	uc.console.Printf("Артикулов обработано:    %d\n", len(report.Products()))
	uc.console.Printf("Всего продано:           %d шт\n", total.UnitsSold)
	uc.console.Printf("Всего возвращено:        %d шт\n", total.UnitsReturned)
	uc.console.Printf("Процент возвратов:       %s\n", returnRate)
	uc.console.Println()
	uc.console.Printf("Общая себестоимость:     %s руб\n", formatAmount(total.TotalCost))
	uc.console.Printf("Логистика:               %s руб\n", formatAmount(total.Logistics))
	uc.console.Printf("Штрафы:                  %s руб\n", formatAmount(total.Penalties))
	uc.console.Printf("Общие расходы:           %s руб\n", formatAmount(total.TotalExpenses))
	uc.console.Println()
	uc.console.Printf("Выручка:                 %s руб\n", formatAmount(total.Revenue))
	uc.console.Printf("Чистая прибыль:          %s\n", profit)
	uc.console.Printf("Рентабельность:          %.2f%%\n", total.MarginPercent)
	uc.console.Println(rule)
}

func countArticles(transactions []entity.Transaction) int {
	seen := make(map[string]struct{}, len(transactions))
	for _, tx := range transactions {
		seen[tx.Article] = struct{}{}
	}
	return len(seen)
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatAmount renders a monetary value with thousands separators,
// e.g. 1234567.8 -> "1,234,567.80".
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + frac
}
