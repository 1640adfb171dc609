package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/resolve"
	"github.com/matzehuels/rfit/pkg/pipeline"
)

// surfaceFlags holds the flags that describe a single surface.
type surfaceFlags struct {
	id     string
	family string
	kind   string
	target float64
	film   float64
	extra  float64
	opts   catalog.Options
}

func (f *surfaceFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.id, "id", "Surface", "surface label used in messages")
	fl.StringVar(&f.family, "family", "", "construction family (wood_stud, steel_stud, double_stud, cmu, sip, icf, generic)")
	fl.StringVar(&f.kind, "kind", string(catalog.Wall), "surface kind (wall, rim_joist, roof, ceiling, floor, foundation_wall, slab)")
	fl.Float64Var(&f.target, "target", 0, "target assembly R-value including films")
	fl.Float64Var(&f.film, "film", 0, "air film resistance (default: the kind's standard films)")
	fl.Float64Var(&f.extra, "extra", 0, "resistance in series outside the assembly")
	fl.Float64Var(&f.opts.CorrectionFactor, "correction-factor", 0, "steel stud cavity correction factor (default 0.45)")
	fl.Float64Var(&f.opts.InteriorFinishThickness, "interior-finish", 0, "gypsum thickness in inches (default 0.5)")
	fl.Float64Var(&f.opts.StudSpacing, "stud-spacing", 0, "double stud spacing in inches o.c. (default 24)")

	_ = cmd.MarkFlagRequired("family")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.RegisterFlagCompletionFunc("family", completeFamilies)
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)
}

// surface builds the surface from the flags. Catalog options given on the
// command line win over the config defaults.
func (f *surfaceFlags) surface(cmd *cobra.Command, defaults catalog.Options) pipeline.Surface {
	opts := defaults
	if f.opts.CorrectionFactor != 0 {
		opts.CorrectionFactor = f.opts.CorrectionFactor
	}
	if f.opts.InteriorFinishThickness != 0 {
		opts.InteriorFinishThickness = f.opts.InteriorFinishThickness
	}
	if f.opts.StudSpacing != 0 {
		opts.StudSpacing = f.opts.StudSpacing
	}

	s := pipeline.Surface{
		ID:           f.id,
		Family:       catalog.Family(f.family),
		Kind:         catalog.Kind(f.kind),
		AssemblyR:    f.target,
		ExtraSeriesR: f.extra,
		Options:      opts,
	}
	if cmd.Flags().Changed("film") {
		film := f.film
		s.FilmR = &film
	}
	return s
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		sf         surfaceFlags
		noCache    bool
		candidates bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Pick and build a template for one surface",
		Example: `  rfit resolve --family wood_stud --target 21
  rfit resolve --family steel_stud --target 15 --correction-factor 0.5
  rfit resolve --family cmu --kind foundation_wall --target 12 --extra 5 --candidates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s := sf.surface(cmd, cfg.Defaults)

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Run(cmd.Context(), s)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			printResult(res)
			printNewline()
			fmt.Println(constructionTable(res.Construction))

			if candidates {
				cat, err := catalog.Build(res.Family, res.Kind, s.Options)
				if err != nil {
					return err
				}
				cands, err := resolve.Candidates(s.StackTarget(), res.FilmR, cat)
				if err != nil {
					return err
				}
				printNewline()
				fmt.Println(candidatesTable(cands, res.Index))
			}
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&candidates, "candidates", false, "also show how every template solves")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func completeFamilies(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(catalog.Families()))
	for _, f := range catalog.Families() {
		out = append(out, string(f))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeKinds(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(catalog.Kinds()))
	for _, k := range catalog.Kinds() {
		out = append(out, string(k))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
