package cli

import (
	"bufio"
	"context"
	"os"
	"runtime/debug"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/wb-tools/wb-report/internal/application/usecase"
	"github.com/wb-tools/wb-report/internal/shared/types"
	"github.com/wb-tools/wb-report/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd       *cobra.Command
	reportUseCase *usecase.ReportUseCase
	version       string
}

// NewCLIApp creates a new CLI application.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "wb-report [input-file.xlsx]",
		Short:   "Wildberries sales report converter",
		Long:    "Aggregates a Wildberries sales/returns export by supplier article and produces a styled summary workbook plus a console statistics digest.",
		Args:    cobra.MaximumNArgs(1),
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "wb-report version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().Float64("cost-ratio", 0.6, "Unit cost as a fraction of the average sale price")
	rootCmd.PersistentFlags().String("sort-by", types.SortByUnitsSold, "Sort column: units_sold, units_returned, revenue, net_profit, margin, avg_price")
	rootCmd.PersistentFlags().Bool("ascending", false, "Sort ascending instead of descending")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Base name for the extra report files (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Extra report formats alongside the workbook: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory for the extra report files (default: input file's directory)")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct. Flags left
// at their defaults stay nil so config-file values keep precedence.
func (app *CLIApp) parseArgs(args []string) (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()

	configFile, _ := flags.GetString("config-file")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")

	cliArgs := &types.CLIArgs{
		ConfigFile: configFile,
		ReportName: reportName,
		ReportType: reportType,
		Dir:        dir,
	}

	if flags.Changed("cost-ratio") {
		v, _ := flags.GetFloat64("cost-ratio")
		cliArgs.CostRatio = &v
	}
	if flags.Changed("sort-by") {
		v, _ := flags.GetString("sort-by")
		cliArgs.SortBy = &v
	}
	if flags.Changed("ascending") {
		v, _ := flags.GetBool("ascending")
		cliArgs.SortAscending = &v
	}

	if len(args) > 0 {
		cliArgs.InputPath = stripQuotes(args[0])
	} else {
		cliArgs.InputPath = promptForPath()
	}

	return cliArgs, nil
}

// promptForPath interactively asks for the input file when no positional
// argument was given.
func promptForPath() string {
	pterm.Println("Введите путь к файлу Excel:")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return stripQuotes(scanner.Text())
}

// stripQuotes removes surrounding quote characters, as shells and file
// managers often paste paths wrapped in them.
func stripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

// runCommand is the main entry point of the CLI command. Processing
// failures are reported with a diagnostic trace and swallowed, so the
// process terminates normally.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := app.reportUseCase.RunReport(ctx, cliArgs); err != nil {
		pterm.Error.Printfln("Processing failed: %v", err)
		os.Stderr.Write(debug.Stack())
	}
	return nil
}

// SetReportUseCase sets the report use case for the CLI app.
func (app *CLIApp) SetReportUseCase(useCase *usecase.ReportUseCase) {
	app.reportUseCase = useCase
}
