package repository

import (
	"github.com/wb-tools/wb-report/internal/shared/types"
)

// ConfigRepository loads the optional configuration file.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.Config, error)
}
