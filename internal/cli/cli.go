package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Import       *ImportCommand
	Calc         *CalcCommand
	Values       *ValuesCommand
	Login        *LoginCommand
	SaveFilter   *SaveFilterCommand
	Filters      *FiltersCommand
	DeleteFilter *DeleteFilterCommand
	Report       *ReportCommand
	Status       *StatusCommand
	Purge        *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "recovery"
	parser.LongDescription = "Stolen-vehicle recovery rates over filtered incident exports."

	cmds := &commands{
		Import:       &ImportCommand{globals: &globals, version: version},
		Calc:         &CalcCommand{globals: &globals, version: version},
		Values:       &ValuesCommand{globals: &globals, version: version},
		Login:        &LoginCommand{globals: &globals, version: version},
		SaveFilter:   &SaveFilterCommand{globals: &globals, version: version},
		Filters:      &FiltersCommand{globals: &globals, version: version},
		DeleteFilter: &DeleteFilterCommand{globals: &globals, version: version},
		Report:       &ReportCommand{globals: &globals, version: version},
		Status:       &StatusCommand{globals: &globals, version: version},
		Purge:        &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("import", "Import an incident export", "Load a CSV incident export into the local store, replacing the previous one.", cmds.Import)
	parser.AddCommand("calc", "Calculate the recovery rate", "Filter incidents and calculate the recovery rate, with a period comparison when a manufacturer, model or package is selected.", cmds.Calc)
	parser.AddCommand("values", "List dimensions or their options", "List the filter dimensions, or the selectable values of one dimension.", cmds.Values)
	parser.AddCommand("login", "Get an access token", "Exchange the dashboard password for a time-limited access token.", cmds.Login)
	parser.AddCommand("save-filter", "Save filters under a name", "Save the given filters under a name for reuse with --saved.", cmds.SaveFilter)
	parser.AddCommand("filters", "List saved filters", "List saved filters.", cmds.Filters)
	parser.AddCommand("delete-filter", "Delete a saved filter", "Delete a saved filter.", cmds.DeleteFilter)
	parser.AddCommand("report", "Post the report to Slack", "Post the recovery report to Slack once, or on the configured schedule.", cmds.Report)
	parser.AddCommand("status", "Show dataset and store statistics", "Show the imported dataset, store statistics and configuration summary.", cmds.Status)
	parser.AddCommand("purge", "Delete ALL stored data", "Delete ALL stored data. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("recovery %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
