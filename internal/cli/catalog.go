package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/core/catalog"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "catalog <family>",
		Short: "List a family's templates in resolution order",
		Long: `List the stock templates of a construction family in the order the
resolver tries them. The last row is the fallback.

The fixed R column includes the kind's standard air films.`,
		Example: `  rfit catalog wood_stud
  rfit catalog wood_stud --kind roof
  rfit catalog sip --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeFamilies,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			family, err := catalog.ParseFamily(args[0])
			if err != nil {
				return err
			}
			k, err := catalog.ParseKind(kind)
			if err != nil {
				return err
			}
			cat, err := catalog.Build(family, k, cfg.Defaults)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(cat)
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("%s / %s", family, k)) + " " +
				StyleDim.Render(fmt.Sprintf("films R-%.2f", k.DefaultFilm())))
			fmt.Println(catalogTable(cat))
			printNextStep("Resolve a surface", fmt.Sprintf("rfit resolve --family %s --kind %s --target 20", family, k))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(catalog.Wall), "surface kind")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}
