package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/errors"
	rfitio "github.com/matzehuels/rfit/pkg/io"
	"github.com/matzehuels/rfit/pkg/pipeline"
	"github.com/matzehuels/rfit/pkg/store"
)

// runOpts holds the flags of the run command.
type runOpts struct {
	output  string
	format  string
	noCache bool
	refresh bool
	jobs    int
	save    bool
	watch   bool
}

// runCommand creates the run command for surface files.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Resolve every surface in a surface file",
		Long: `Resolve every surface listed in a TOML, JSON or YAML surface file.

The report is printed as a table, or written with -o. The report format
follows the output extension unless -f is given.

With --save the report is also recorded in the run history (see
"rfit history"). With --watch the file is resolved again every time it
changes, until interrupted.`,
		Example: `  rfit run house.toml
  rfit run house.toml -o report.json
  rfit run house.yaml -f toml > report.toml
  rfit run house.toml --save
  rfit run house.toml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSurfaces(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to this file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: json, toml or yaml")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute cached results")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "surfaces resolved in parallel (default from config, then 4)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "record the report in the run history")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "resolve again whenever the file changes")

	return cmd
}

// batch is everything one run of a surface file needs.
type batch struct {
	path   string
	format rfitio.Format
	opts   runOpts
	cfg    *Config
	runner *pipeline.Runner
	store  *store.Store
}

func (c *CLI) runSurfaces(cmd *cobra.Command, path string, opts runOpts) error {
	ctx := cmd.Context()

	b := batch{path: path, opts: opts}
	if opts.format != "" {
		f, err := rfitio.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		b.format = f
	}
	if opts.jobs < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "--jobs must not be negative")
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b.cfg = cfg

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	runner.Refresh = opts.refresh
	if opts.jobs > 0 {
		runner.Concurrency = opts.jobs
	}
	b.runner = runner

	if opts.save {
		st, err := c.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		b.store = st
	}

	if !opts.watch {
		return c.runBatch(ctx, b)
	}

	if err := c.runBatch(ctx, b); err != nil {
		c.Logger.Error("run failed", "error", err)
	}
	printInfo("Watching %s (Ctrl+C to stop)", path)
	err = watchFile(ctx, c.Logger, path, watchDebounce, func() error {
		printNewline()
		return c.runBatch(ctx, b)
	})
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runBatch reads, resolves and reports one surface file.
func (c *CLI) runBatch(ctx context.Context, b batch) error {
	surfaces, err := rfitio.ImportSurfaces(b.path)
	if err != nil {
		return err
	}
	for i := range surfaces {
		surfaces[i].Options = mergeOptions(b.cfg.Defaults, surfaces[i].Options)
	}
	c.Logger.Debug("imported surfaces", "file", b.path, "count", len(surfaces))

	spinner := newBatchProgress(ctx, os.Stderr, "Resolving", len(surfaces))
	spinner.Start()
	b.runner.Progress = spinner.Advance
	report, err := b.runner.RunAll(ctx, surfaces)
	b.runner.Progress = nil
	spinner.Stop()
	if err != nil {
		return err
	}

	if b.store != nil {
		if err := c.saveReport(ctx, b.store, b.cfg.Store.Keep, report, b.path); err != nil {
			return err
		}
	}

	switch {
	case b.opts.output != "" && b.format == "":
		if err := rfitio.ExportReport(report, b.opts.output); err != nil {
			return err
		}
	case b.opts.output != "":
		if err := rfitio.ExportReportAs(report, b.opts.output, b.format); err != nil {
			return err
		}
	case b.format != "":
		return rfitio.WriteReport(os.Stdout, report, b.format)
	}

	printSuccess("Resolved %d surfaces", report.Stats.Surfaces)
	printStats(report.Stats)
	if b.store != nil {
		printDetail("Saved as run %s", shortRunID(report.RunID))
	}
	if b.opts.output != "" {
		printFile(b.opts.output)
		return nil
	}
	printNewline()
	fmt.Println(reportTable(report))
	return nil
}

// saveReport records report and prunes the history to keep runs.
func (c *CLI) saveReport(ctx context.Context, st *store.Store, keep int, report *pipeline.Report, source string) error {
	if err := st.Save(ctx, report, source); err != nil {
		return err
	}
	c.Logger.Debug("saved run", "run_id", report.RunID, "db", st.Path())
	if keep > 0 {
		n, err := st.Prune(ctx, keep)
		if err != nil {
			return err
		}
		if n > 0 {
			c.Logger.Debug("pruned run history", "removed", n, "keep", keep)
		}
	}
	return nil
}

// mergeOptions fills the zero fields of o from base.
func mergeOptions(base, o catalog.Options) catalog.Options {
	if o.InteriorFinishThickness == 0 {
		o.InteriorFinishThickness = base.InteriorFinishThickness
	}
	if o.ExteriorFinishR == 0 {
		o.ExteriorFinishR = base.ExteriorFinishR
	}
	if o.CorrectionFactor == 0 {
		o.CorrectionFactor = base.CorrectionFactor
	}
	if o.StudSpacing == 0 {
		o.StudSpacing = base.StudSpacing
	}
	return o
}
