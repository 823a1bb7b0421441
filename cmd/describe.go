package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliFlag and cliCommand describe the shape a build-time CLI-JSON generator
// would introspect its own Cobra tree into; here it backs a runtime
// `describe` subcommand instead, useful for scripts that want to discover
// available flags without parsing --help text.
type cliFlag struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Default     string `json:"default"`
}

type cliCommand struct {
	Name        string       `json:"name"`
	Short       string       `json:"short"`
	Use         string       `json:"use"`
	Flags       []cliFlag    `json:"flags"`
	Subcommands []cliCommand `json:"subcommands,omitempty"`
}

var describeCmd = &cobra.Command{
	Use:    "describe",
	Short:  "Print the CLI's own command and flag definitions as JSON",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		def := describeCommand(rootCmd)
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return failUsage(err)
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func describeCommand(c *cobra.Command) cliCommand {
	subs := make([]cliCommand, 0, len(c.Commands()))
	for _, child := range c.Commands() {
		subs = append(subs, describeCommand(child))
	}
	return cliCommand{
		Name:        c.Name(),
		Short:       c.Short,
		Use:         c.Use,
		Flags:       describeFlags(c.Flags()),
		Subcommands: subs,
	}
}

func describeFlags(flagSet *pflag.FlagSet) []cliFlag {
	if flagSet == nil {
		return []cliFlag{}
	}
	flags := make([]cliFlag, 0, flagSet.NFlag())
	flagSet.VisitAll(func(f *pflag.Flag) {
		flags = append(flags, cliFlag{Name: f.Name, Shorthand: f.Shorthand, Description: f.Usage, Default: f.DefValue})
	})
	return flags
}
