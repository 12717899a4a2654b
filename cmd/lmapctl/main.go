// Command lmapctl is the lmapd control client, spec.md §6/§7.
package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lmapcloud/lmapd/internal/build"
	"github.com/lmapcloud/lmapd/internal/config"
	"github.com/lmapcloud/lmapd/internal/control"
	"github.com/lmapcloud/lmapd/internal/serialize"
	"github.com/lmapcloud/lmapd/internal/serialize/jsonengine"
	"github.com/lmapcloud/lmapd/internal/serialize/xmlengine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var sockPath string
	var inputFormat string
	var wide bool

	cmd := &cobra.Command{
		Use:           "lmapctl",
		Short:         "control client for lmapd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&sockPath, "socket", config.DefaultRunDir()+"/lmapd.sock", "daemon control socket path")
	cmd.PersistentFlags().StringVarP(&inputFormat, "input-format", "i", "json", "report/status input format: json|xml")

	client := func() *control.Client { return control.NewClient(sockPath) }

	cmd.AddCommand(
		&cobra.Command{
			Use:   "reload",
			Short: "reload the running configuration",
			RunE:  func(*cobra.Command, []string) error { return client().Reload() },
		},
		&cobra.Command{
			Use:   "clean",
			Short: "remove stale workspace files from completed schedules/actions",
			RunE:  func(*cobra.Command, []string) error { return client().Clean() },
		},
		&cobra.Command{
			Use:   "validate",
			Short: "validate that the running configuration is sound",
			RunE:  func(*cobra.Command, []string) error { return client().Validate() },
		},
		&cobra.Command{
			Use:   "shutdown",
			Short: "ask the daemon to shut down gracefully",
			RunE:  func(*cobra.Command, []string) error { return client().Shutdown() },
		},
		newStatusCmd(client, &inputFormat, &wide),
		&cobra.Command{
			Use:   "running",
			Short: "print the state of currently running actions",
			RunE: func(*cobra.Command, []string) error {
				out, err := client().Running()
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "report",
			Short: "collect and print an LMAP report for completed results",
			RunE: func(*cobra.Command, []string) error {
				out, err := client().Report()
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "config",
			Short: "print the daemon's currently loaded configuration",
			RunE: func(*cobra.Command, []string) error {
				out, err := client().Status()
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "print lmapctl's version",
			RunE: func(*cobra.Command, []string) error {
				fmt.Println(build.Banner())
				return nil
			},
		},
	)
	cmd.InitDefaultHelpCmd()

	return cmd
}

func newStatusCmd(client func() *control.Client, inputFormat *string, wide *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "print a summary of the daemon's current state",
		RunE: func(*cobra.Command, []string) error {
			raw, err := client().Status()
			if err != nil {
				return err
			}
			engine := engineFor(*inputFormat)
			fmt.Println(renderStatusTable(raw, engine, *wide))
			return nil
		},
	}
	cmd.Flags().BoolVarP(wide, "wide", "w", false, "render the wide-format status table")
	return cmd
}

// renderStatusTable lays the raw state document out as a table via
// go-pretty. The default form has Field/Value columns with an "engine"
// row and a "state" row holding the raw document; in wide mode a single
// row carries the engine in Value and the raw document in a third Raw
// column. The terminal width is not consulted.
func renderStatusTable(raw string, engine serialize.Engine, wide bool) string {
	t := table.NewWriter()
	if wide {
		t.AppendHeader(table.Row{"Field", "Value", "Raw"})
		t.AppendRow(table.Row{"engine", engine.Kind(), raw})
	} else {
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRow(table.Row{"engine", engine.Kind()})
		t.AppendRow(table.Row{"state", raw})
	}
	return t.Render()
}

func engineFor(format string) serialize.Engine {
	if format == "xml" {
		return xmlengine.Engine{}
	}
	return jsonengine.Engine{}
}
