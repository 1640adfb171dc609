package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/errors"
	rfitio "github.com/matzehuels/rfit/pkg/io"
)

// defaultHistoryLimit is how many runs "rfit history" lists by default.
const defaultHistoryLimit = 20

// historyCommand creates the run history command.
func (c *CLI) historyCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs",
		Long: `List the reports recorded with "rfit run --save" or by "rfit serve --history",
newest first. Runs are identified by their run ID or any unique prefix of it.`,
		Example: `  rfit history
  rfit history show 3f2a9c
  rfit history prune --keep 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--limit must not be negative")
			}
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				printInfo("No saved runs")
				printNextStep("Save one with", "rfit run <file> --save")
				return nil
			}
			fmt.Println(historyTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the runs as JSON")

	cmd.AddCommand(c.historyShowCommand())
	cmd.AddCommand(c.historyRemoveCommand())
	cmd.AddCommand(c.historyPruneCommand())
	cmd.AddCommand(c.historyPathCommand())

	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := st.Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var f rfitio.Format
			if format != "" {
				if f, err = rfitio.ParseFormat(format); err != nil {
					return err
				}
			}
			switch {
			case output != "" && f == "":
				if err := rfitio.ExportReport(report, output); err != nil {
					return err
				}
				printFile(output)
				return nil
			case output != "":
				if err := rfitio.ExportReportAs(report, output, f); err != nil {
					return err
				}
				printFile(output)
				return nil
			case f != "":
				return rfitio.WriteReport(os.Stdout, report, f)
			}

			fmt.Println(StyleTitle.Render("Run " + report.RunID))
			printKeyValue("Started", report.StartedAt.Local().Format("2006-01-02 15:04:05"))
			printKeyValue("Version", report.Version)
			printStats(report.Stats)
			printNewline()
			fmt.Println(reportTable(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "report format: json, toml or yaml")

	return cmd
}

// historyRemoveCommand creates the "history rm" subcommand.
func (c *CLI) historyRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <run-id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			runID, err := st.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSuccess("Deleted run %s", runID)
			return nil
		},
	}
}

// historyPruneCommand creates the "history prune" subcommand.
func (c *CLI) historyPruneCommand() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			printSuccess("Deleted %d runs", n)
			printDetail("Kept the newest %d", keep)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", defaultHistoryLimit, "number of runs to keep")

	return cmd
}

// historyPathCommand creates the "history path" subcommand.
func (c *CLI) historyPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the history database path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			path, err := cfg.storePath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// shortRunID abbreviates a run ID for display; any unique prefix is
// accepted back.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
