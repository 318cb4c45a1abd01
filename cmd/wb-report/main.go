package main

import (
	"fmt"
	"os"

	"github.com/wb-tools/wb-report/internal/adapter/driven/config"
	"github.com/wb-tools/wb-report/internal/adapter/driven/export"
	"github.com/wb-tools/wb-report/internal/adapter/driven/spreadsheet"
	"github.com/wb-tools/wb-report/internal/adapter/driving/cli"
	"github.com/wb-tools/wb-report/internal/application/usecase"
	"github.com/wb-tools/wb-report/pkg/console"
	"github.com/wb-tools/wb-report/pkg/version"
)

func main() {
	app := cli.NewCLIApp(version.Version)

	spreadsheetRepo := spreadsheet.NewSpreadsheetRepository()
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	reportUseCase := usecase.NewReportUseCase(
		spreadsheetRepo,
		exportRepo,
		configRepo,
		consoleImpl,
	)

	app.SetReportUseCase(reportUseCase)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
