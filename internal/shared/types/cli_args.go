package types

// CLIArgs represents the command-line arguments. Pointer fields are nil
// when the corresponding flag was not set, so config-file values are not
// clobbered by flag defaults.
type CLIArgs struct {
	InputPath     string
	ConfigFile    string
	CostRatio     *float64
	SortBy        *string
	SortAscending *bool
	ReportName    string
	ReportType    []string
	Dir           string
}
