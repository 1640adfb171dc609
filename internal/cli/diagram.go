package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/render/diagram"
)

// Diagram output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// diagramCommand creates the diagram command.
func (c *CLI) diagramCommand() *cobra.Command {
	var (
		sf       surfaceFlags
		output   string
		detailed bool
		scale    float64
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Draw the resistance network of a resolved surface",
		Long: `Resolve one surface and draw its construction as a resistance network:
the shared layers in series, each parallel path as a cluster with its share
of the area.

The output format follows the extension of -o: .svg, .dot, .pdf or .png.
PDF and PNG need rsvg-convert from librsvg.`,
		Example: `  rfit diagram --family sip --target 28 -o sip.svg
  rfit diagram --family double_stud --target 40 --detailed -o wall.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := diagramFormat(output)
			if err != nil {
				return err
			}
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

			p := newProgress(c.Logger)
			dot := diagram.ToDOT(res.Construction, diagram.Options{Title: s.ID, Detailed: detailed})
			data, err := renderDiagram(dot, format, scale)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
			}
			p.done("Rendered " + format + " diagram")

			printSuccess("%s %s %s", s.ID, StyleDim.Render(iconArrow), res.Template)
			printFile(output)
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg, .dot, .pdf or .png)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show thickness and conductivity of every layer")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG scale factor")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// diagramFormat derives the output format from a file name.
func diagramFormat(path string) (string, error) {
	if err := errors.ValidatePath(path); err != nil {
		return "", err
	}
	switch f := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); f {
	case formatDOT, formatSVG, formatPDF, formatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "%s: diagram output must end in .svg, .dot, .pdf or .png", path)
}

func renderDiagram(dot, format string, scale float64) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return diagram.RenderSVG(dot)
	case formatPDF:
		return diagram.RenderPDF(dot)
	case formatPNG:
		return diagram.RenderPNG(dot, scale)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported diagram format %q", format)
}
