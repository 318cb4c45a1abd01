package cli

import (
	"fmt"

	"github.com/wb-tools/wb-report/pkg/console"
	"github.com/wb-tools/wb-report/pkg/version"
)

// displayWelcomeBanner shows the welcome banner with version information.
func displayWelcomeBanner(versionStr string) {
	banner := `
        /$$      /$$ /$$$$$$$        /$$$$$$$                                          /$$
       | $$  /$ | $$| $$__  $$      | $$__  $$                                        | $$
       | $$ /$$$| $$| $$  \ $$      | $$  \ $$  /$$$$$$   /$$$$$$   /$$$$$$   /$$$$$$ | $$$$$$$
       | $$/$$ $$ $$| $$$$$$$       | $$$$$$$/ /$$__  $$ /$$__  $$ /$$__  $$ /$$__  $$|__  $$__/
       | $$$$_  $$$$| $$__  $$      | $$__  $$| $$$$$$$$| $$  \ $$| $$  \ $$| $$  \__/   | $$
       | $$$/ \  $$$| $$  \ $$      | $$  \ $$| $$_____/| $$  | $$| $$  | $$| $$         | $$ /$$
       | $$/   \  $$| $$$$$$$/      | $$  | $$|  $$$$$$$| $$$$$$$/|  $$$$$$/| $$         |  $$$$/
       |__/     \__/|_______/       |__/  |__/ \_______/| $$____/  \______/ |__/          \___/
                                                        | $$
                                                        | $$
                                                        |__/
        `
	fmt.Println(console.BoldRed(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(console.BrightCyan(fmt.Sprintf("Wildberries Sales Report Converter (v%s)", formattedVersion)))
}
