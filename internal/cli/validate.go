package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/validate"
)

// validateCommand creates the validate command, which checks a hand-built
// stack against its target without resolving anything.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		id       string
		kind     string
		realized float64
		target   float64
		film     float64
		extra    float64
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a realized stack resistance against a target",
		Long: fmt.Sprintf(`Check that a realized stack resistance (films excluded) plus the air
films and any extra series resistance lands within R-%.2f of the target.`, validate.Tolerance),
		Example: `  rfit validate --realized 20.15 --target 21
  rfit validate --realized 11.3 --target 12 --kind foundation_wall --extra 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := catalog.ParseKind(kind)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("film") {
				film = k.DefaultFilm()
			}

			out, err := validate.Validate(realized, film, extra, target, id)
			if err != nil {
				return err
			}
			printSuccess("%s reproduces R-%.2f", id, out.Target)
			printKeyValue("Realized", fmt.Sprintf("R-%.4f", out.Realized))
			printKeyValue("Delta", fmt.Sprintf("%+.4f", out.Delta))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "Surface", "surface label used in messages")
	cmd.Flags().StringVar(&kind, "kind", string(catalog.Wall), "surface kind, selects the default films")
	cmd.Flags().Float64Var(&realized, "realized", 0, "as-built stack resistance without films")
	cmd.Flags().Float64Var(&target, "target", 0, "target assembly R-value")
	cmd.Flags().Float64Var(&film, "film", 0, "air film resistance (default: the kind's standard films)")
	cmd.Flags().Float64Var(&extra, "extra", 0, "resistance in series outside the stack")
	_ = cmd.MarkFlagRequired("realized")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}
