// Command recovery imports incident exports and reports recovery rates.
package main

import (
	"os"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// go-flags prints parse and command errors itself.
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
