package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/render"
	"github.com/matzehuels/matlayer/pkg/render/nodelink"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string // output file, empty for stdout
	format   string // dot, svg, pdf, png
	groups   bool   // draw node group contents
	detailed bool   // kinds and properties in labels
}

// graphCommand renders a material's node tree.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:               "graph <material>",
		Short:             "Render the material node tree",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMaterial,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.format {
			case render.FormatDOT, render.FormatSVG, render.FormatPDF, render.FormatPNG:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown graph format %q (dot, svg, pdf, png)", opts.format)
			}
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg (default), pdf, png")
	cmd.Flags().BoolVar(&opts.groups, "groups", false, "draw node group contents")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node kinds and properties")
	return cmd
}

func (c *CLI) runGraph(ctx context.Context, name string, opts graphOpts) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := store.Get(ctx, name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "load %s", name)
	}
	if doc == nil {
		return errors.New(errors.ErrCodeNotFound, "material %s not found", name)
	}
	matOpts, err := c.materialOptions()
	if err != nil {
		return err
	}
	m, err := doc.Material(matOpts...)
	if err != nil {
		return err
	}

	rc, err := c.newCache()
	if err != nil {
		return err
	}
	defer rc.Close()

	prog := newProgress(c.Logger)
	var (
		data []byte
		hit  bool
	)
	err = withSpinner(ctx, "Rendering "+name, func() error {
		var err error
		data, hit, err = nodelink.Render(ctx, rc, nil, nodelink.Request{
			Tree:    m.Tree,
			DocHash: doc.Hash(),
			Format:  opts.format,
			Options: nodelink.Options{Groups: opts.groups, Detailed: opts.detailed},
		})
		return err
	})
	if err != nil {
		return err
	}
	prog.done("rendered graph", "material", name, "format", opts.format, "cached", hit)

	if opts.output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", name)
	printFile(opts.output)
	printStats(m.Tree.NodeCount(), len(m.Tree.Links()), hit)
	return nil
}
