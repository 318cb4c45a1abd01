package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wb-tools/wb-report/internal/adapter/driven/export"
	"github.com/wb-tools/wb-report/internal/adapter/driven/spreadsheet"
	"github.com/wb-tools/wb-report/internal/domain/entity"
	"github.com/wb-tools/wb-report/internal/shared/types"
)

// fakeConsole records log lines so tests can assert on progress and errors.
type fakeConsole struct {
	infos    []string
	warnings []string
	errors   []string
}

func (c *fakeConsole) Print(a ...interface{})                     {}
func (c *fakeConsole) Printf(format string, a ...interface{})     {}
func (c *fakeConsole) Println(a ...interface{})                   {}
func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {}

func (c *fakeConsole) LogInfo(format string, a ...interface{}) {
	c.infos = append(c.infos, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) Status(message string) types.StatusHandle { return fakeStatus{} }

type fakeStatus struct{}

func (fakeStatus) Update(message string) {}
func (fakeStatus) Stop()                 {}

type fakeConfigRepo struct {
	cfg *types.Config
}

func (r *fakeConfigRepo) LoadConfigFile(filePath string) (*types.Config, error) {
	return r.cfg, nil
}

func newTestUseCase() (*ReportUseCase, *fakeConsole) {
	console := &fakeConsole{}
	uc := NewReportUseCase(
		spreadsheet.NewSpreadsheetRepository(),
		export.NewExportRepository(),
		&fakeConfigRepo{cfg: types.DefaultConfig()},
		console,
	)
	return uc, console
}

func TestAggregateSaleAndReturnScenario(t *testing.T) {
	uc, _ := newTestUseCase()

	transactions := []entity.Transaction{
		{Article: "A", DocType: entity.DocTypeSale, Quantity: 10, RetailPrice: 100, Remittance: 900, Title: "Товар А", Brand: "Бренд"},
		{Article: "A", DocType: entity.DocTypeReturn, Quantity: 2, Title: "Товар А", Brand: "Бренд"},
	}

	summaries := uc.AggregateTransactions(transactions, types.DefaultConfig())
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "A", s.Article)
	assert.Equal(t, "Бренд", s.Brand)
	assert.Equal(t, "Товар А", s.Title)
	assert.Equal(t, 10, s.UnitsSold)
	assert.Equal(t, 2, s.UnitsReturned)
	assert.Equal(t, 100.0, s.AvgSalePrice)
	assert.Equal(t, 60.0, s.UnitCost)
	assert.Equal(t, 600.0, s.TotalCost)
	assert.Equal(t, 600.0, s.TotalExpenses)
	assert.Equal(t, 900.0, s.Revenue)
	assert.Equal(t, 300.0, s.NetProfit)
	assert.Equal(t, 33.33, s.MarginPercent)
}

func TestAggregateArticleWithoutSaleRows(t *testing.T) {
	uc, _ := newTestUseCase()

	transactions := []entity.Transaction{
		{Article: "B", DocType: entity.DocTypeReturn, Quantity: 1, Penalty: 50, Title: "Товар Б"},
	}

	summaries := uc.AggregateTransactions(transactions, types.DefaultConfig())
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Zero(t, s.UnitsSold)
	assert.Equal(t, 1, s.UnitsReturned)
	assert.Zero(t, s.AvgSalePrice)
	assert.Zero(t, s.UnitCost)
	assert.Zero(t, s.TotalCost)
	assert.Equal(t, 50.0, s.Penalties)
	assert.Equal(t, 50.0, s.TotalExpenses)
	assert.Equal(t, -50.0, s.NetProfit)
	assert.Zero(t, s.MarginPercent, "margin is guarded when revenue is zero")
}

func TestAggregateOtherDocTypesCountTowardSums(t *testing.T) {
	uc, _ := newTestUseCase()

	// A storno row: neither sale nor return, but its fees and remittance
	// still count for the article.
	transactions := []entity.Transaction{
		{Article: "C", DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 200, Remittance: 180},
		{Article: "C", DocType: "Сторно", Quantity: 1, DeliveryFee: 30, Penalty: 10, Remittance: 5},
	}

	summaries := uc.AggregateTransactions(transactions, types.DefaultConfig())
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, 1, s.UnitsSold, "storno quantity excluded from units sold")
	assert.Zero(t, s.UnitsReturned)
	assert.Equal(t, 200.0, s.AvgSalePrice, "price averaged over sale rows only")
	assert.Equal(t, 30.0, s.Logistics)
	assert.Equal(t, 10.0, s.Penalties)
	assert.Equal(t, 185.0, s.Revenue)
}

func TestAggregateEmptyInput(t *testing.T) {
	uc, _ := newTestUseCase()
	cfg := types.DefaultConfig()

	summaries := uc.AggregateTransactions(nil, cfg)
	assert.Empty(t, summaries)

	report := uc.Totalize(summaries, cfg)
	require.Len(t, report.Rows, 1)

	total := report.Total()
	require.NotNil(t, total)
	assert.Equal(t, entity.TotalMarker, total.Article)
	assert.Zero(t, total.UnitsSold)
	assert.Zero(t, total.Revenue)
	assert.Zero(t, total.MarginPercent)
}

func TestDistinctArticleCount(t *testing.T) {
	uc, _ := newTestUseCase()

	transactions := []entity.Transaction{
		{Article: "A", DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 10},
		{Article: "B", DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 10},
		{Article: "A", DocType: entity.DocTypeReturn, Quantity: 1},
		{Article: "C", DocType: "Логистика", DeliveryFee: 5},
	}

	summaries := uc.AggregateTransactions(transactions, types.DefaultConfig())
	assert.Len(t, summaries, 3, "one record per distinct article")
}

func TestExpenseAndProfitIdentities(t *testing.T) {
	uc, _ := newTestUseCase()

	// Awkward fractions that force rounding at record creation.
	transactions := []entity.Transaction{
		{Article: "X", DocType: entity.DocTypeSale, Quantity: 3, RetailPrice: 33.335, DeliveryFee: 1.115, Penalty: 0.005, Remittance: 99.999},
		{Article: "X", DocType: entity.DocTypeSale, Quantity: 2, RetailPrice: 17.777, DeliveryFee: 2.229, Remittance: 50.001},
		{Article: "Y", DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 0.01, Remittance: 0.01},
	}

	summaries := uc.AggregateTransactions(transactions, types.DefaultConfig())
	for _, s := range summaries {
		assert.Equal(t, round2(s.TotalCost+s.Logistics+s.Penalties), s.TotalExpenses,
			"total_expenses identity for %s", s.Article)
		assert.Equal(t, round2(s.Revenue-s.TotalExpenses), s.NetProfit,
			"net_profit identity for %s", s.Article)
	}
}

func TestTotalsEqualColumnSums(t *testing.T) {
	uc, _ := newTestUseCase()
	cfg := types.DefaultConfig()

	transactions := []entity.Transaction{
		{Article: "A", DocType: entity.DocTypeSale, Quantity: 4, RetailPrice: 150.55, DeliveryFee: 12.34, Remittance: 540.12},
		{Article: "B", DocType: entity.DocTypeSale, Quantity: 7, RetailPrice: 99.99, Penalty: 25, Remittance: 610.45},
		{Article: "B", DocType: entity.DocTypeReturn, Quantity: 1, DeliveryFee: 3.21},
		{Article: "C", DocType: entity.DocTypeReturn, Quantity: 2, Penalty: 50},
	}

	summaries := uc.AggregateTransactions(transactions, cfg)
	report := uc.Totalize(summaries, cfg)
	total := report.Total()
	require.NotNil(t, total)

	var unitsSold, unitsReturned int
	var totalCost, logistics, penalties, expenses, revenue, profit float64
	for _, s := range report.Products() {
		unitsSold += s.UnitsSold
		unitsReturned += s.UnitsReturned
		totalCost += s.TotalCost
		logistics += s.Logistics
		penalties += s.Penalties
		expenses += s.TotalExpenses
		revenue += s.Revenue
		profit += s.NetProfit
	}

	assert.Equal(t, unitsSold, total.UnitsSold)
	assert.Equal(t, unitsReturned, total.UnitsReturned)
	assert.Equal(t, round2(totalCost), total.TotalCost)
	assert.Equal(t, round2(logistics), total.Logistics)
	assert.Equal(t, round2(penalties), total.Penalties)
	assert.Equal(t, round2(expenses), total.TotalExpenses)
	assert.Equal(t, round2(revenue), total.Revenue)
	assert.Equal(t, round2(profit), total.NetProfit)

	assert.Zero(t, total.AvgSalePrice, "per-unit averages stay blank on the total row")
	assert.Zero(t, total.UnitCost)
	assert.True(t, total.IsTotal)
}

func TestSortDefaultDescendingAndStable(t *testing.T) {
	uc, _ := newTestUseCase()

	transactions := []entity.Transaction{
		{Article: "low", DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 10},
		{Article: "tie1", DocType: entity.DocTypeSale, Quantity: 5, RetailPrice: 10},
		{Article: "high", DocType: entity.DocTypeSale, Quantity: 9, RetailPrice: 10},
		{Article: "tie2", DocType: entity.DocTypeSale, Quantity: 5, RetailPrice: 10},
	}

	summaries := uc.AggregateTransactions(transactions, types.DefaultConfig())
	require.Len(t, summaries, 4)

	assert.Equal(t, "high", summaries[0].Article)
	assert.Equal(t, "tie1", summaries[1].Article, "ties keep first-appearance order")
	assert.Equal(t, "tie2", summaries[2].Article)
	assert.Equal(t, "low", summaries[3].Article)
}

func TestSortByNetProfitAscending(t *testing.T) {
	uc, _ := newTestUseCase()

	cfg := types.DefaultConfig()
	cfg.SortBy = types.SortByNetProfit
	cfg.SortAscending = true

	transactions := []entity.Transaction{
		{Article: "profit", DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 100, Remittance: 500},
		{Article: "loss", DocType: entity.DocTypeReturn, Quantity: 1, Penalty: 80},
	}

	summaries := uc.AggregateTransactions(transactions, cfg)
	require.Len(t, summaries, 2)
	assert.Equal(t, "loss", summaries[0].Article)
	assert.Equal(t, "profit", summaries[1].Article)
}

func TestSortUnknownColumnFallsBack(t *testing.T) {
	uc, console := newTestUseCase()

	cfg := types.DefaultConfig()
	cfg.SortBy = "nope"

	transactions := []entity.Transaction{
		{Article: "A", DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 10},
		{Article: "B", DocType: entity.DocTypeSale, Quantity: 3, RetailPrice: 10},
	}

	summaries := uc.AggregateTransactions(transactions, cfg)
	require.Len(t, summaries, 2)
	assert.Equal(t, "B", summaries[0].Article)
	require.NotEmpty(t, console.warnings)
	assert.Contains(t, console.warnings[0], "nope")
}

func TestProgressReportedEveryFiftyArticles(t *testing.T) {
	uc, console := newTestUseCase()

	var transactions []entity.Transaction
	for i := 0; i < 120; i++ {
		transactions = append(transactions, entity.Transaction{
			Article: fmt.Sprintf("art-%03d", i),
			DocType: entity.DocTypeSale, Quantity: 1, RetailPrice: 10,
		})
	}

	uc.AggregateTransactions(transactions, types.DefaultConfig())

	require.Len(t, console.infos, 2)
	assert.Equal(t, "Processed 50/120 articles", console.infos[0])
	assert.Equal(t, "Processed 100/120 articles", console.infos[1])
}

func TestResolveConfigPrecedence(t *testing.T) {
	fileCfg := types.DefaultConfig()
	fileCfg.CostRatio = 0.5
	fileCfg.SortBy = types.SortByRevenue

	uc := NewReportUseCase(nil, nil, &fakeConfigRepo{cfg: fileCfg}, &fakeConsole{})

	ratio := 0.7
	args := &types.CLIArgs{
		ConfigFile: "wb-report.yaml",
		CostRatio:  &ratio,
	}

	cfg, err := uc.ResolveConfig(args)
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.CostRatio, "flag overrides config file")
	assert.Equal(t, types.SortByRevenue, cfg.SortBy, "config file overrides default")
	assert.False(t, cfg.SortAscending)
}

func TestRunReportMissingInputFile(t *testing.T) {
	uc, console := newTestUseCase()
	dir := t.TempDir()

	args := &types.CLIArgs{InputPath: filepath.Join(dir, "нет_такого.xlsx")}
	err := uc.RunReport(context.Background(), args)

	require.NoError(t, err, "a missing input file is reported, not raised")
	require.NotEmpty(t, console.errors)
	assert.Contains(t, console.errors[0], "нет_такого.xlsx")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no output file is created")
}

func TestRunReportEndToEnd(t *testing.T) {
	uc, _ := newTestUseCase()
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "отчет.xlsx")
	writeFixtureReport(t, inputPath)

	args := &types.CLIArgs{InputPath: inputPath}
	require.NoError(t, uc.RunReport(context.Background(), args))

	outputPath := export.SummaryPath(inputPath, time.Now())
	_, err := os.Stat(outputPath)
	require.NoError(t, err, "summary workbook persisted next to the input")
}

func writeFixtureReport(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{
		spreadsheet.ColArticle, spreadsheet.ColDocType, spreadsheet.ColQuantity,
		spreadsheet.ColPrice, spreadsheet.ColDelivery, spreadsheet.ColPenalty,
		spreadsheet.ColRemittance, spreadsheet.ColTitle, spreadsheet.ColBrand,
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))

	rows := [][]interface{}{
		{"A-1", entity.DocTypeSale, 10, 100.0, 0.0, 0.0, 900.0, "Товар", "Бренд"},
		{"A-1", entity.DocTypeReturn, 2, 0.0, 0.0, 0.0, 0.0, "Товар", "Бренд"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, round2(33.333333))
	assert.Equal(t, 33.34, round2(33.336))
	assert.Equal(t, -50.0, round2(-50.0001))
	assert.Equal(t, 0.0, round2(0))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234,567.80", formatAmount(1234567.8))
	assert.Equal(t, "999.99", formatAmount(999.99))
	assert.Equal(t, "-12,500.00", formatAmount(-12500))
	assert.Equal(t, "0.00", formatAmount(0))
}
