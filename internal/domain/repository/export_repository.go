package repository

import (
	"github.com/wb-tools/wb-report/internal/domain/entity"
)

// ExportRepository persists the totalized summary report.
type ExportRepository interface {
	// ExportToExcel writes the styled summary workbook next to the input
	// file, using the localized filename template, and returns the path.
	ExportToExcel(report *entity.SummaryReport, inputPath string) (string, error)

	// Supplemental flat exports of the same table.
	ExportToCSV(report *entity.SummaryReport, filename, outputDir string) (string, error)
	ExportToJSON(report *entity.SummaryReport, filename, outputDir string) (string, error)
	ExportToPDF(report *entity.SummaryReport, filename, outputDir string) (string, error)
}
