package types

import "errors"

var (
	ErrEmptyWorkbook = errors.New("the workbook contains no sheets")
	ErrMissingHeader = errors.New("the report contains no header row")
	ErrNoInputPath   = errors.New("no input file path provided")
)
