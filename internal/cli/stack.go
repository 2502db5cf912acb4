package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/stack"
)

// stackCommand creates the "layer" or "mask" command family. Every
// subcommand loads the material, runs one engine command, and saves it.
func (c *CLI) stackCommand(target material.Target) *cobra.Command {
	noun := "layer"
	if target == material.TargetMask {
		noun = "mask"
	}
	layer := stack.NoSelection

	cmd := &cobra.Command{
		Use:   noun,
		Short: fmt.Sprintf("Edit the %s stack of a material", noun),
	}
	if target == material.TargetMask {
		cmd.PersistentFlags().IntVarP(&layer, "layer", "l", stack.NoSelection, "select this layer before running (default: the selected layer)")
	}

	sub := func(use, short string, op material.Op, argName string) *cobra.Command {
		nargs := 1
		if argName != "" {
			use += " " + argName
			nargs = 2
		}
		return &cobra.Command{
			Use:               use,
			Short:             short,
			Args:              cobra.ExactArgs(nargs),
			ValidArgsFunction: c.completeMaterial,
			RunE: func(cmd *cobra.Command, args []string) error {
				var a material.Args
				switch op {
				case material.OpAdd:
					a.Kind = args[1]
				case material.OpHide, material.OpSelect:
					i, err := strconv.Atoi(args[1])
					if err != nil {
						return errors.New(errors.ErrCodeInvalidIndex, "%s index %q is not a number", noun, args[1])
					}
					a.Index = i
				}
				return c.runOp(cmd.Context(), args[0], target, op, a, layer)
			},
		}
	}

	cmd.AddCommand(sub("add <material>", fmt.Sprintf("Add a %s above the selected one", noun), material.OpAdd, "<kind>"))
	cmd.AddCommand(sub("rm <material>", fmt.Sprintf("Delete the selected %s", noun), material.OpDelete, ""))
	cmd.AddCommand(sub("up <material>", fmt.Sprintf("Move the selected %s toward the top", noun), material.OpUp, ""))
	cmd.AddCommand(sub("down <material>", fmt.Sprintf("Move the selected %s toward the bottom", noun), material.OpDown, ""))
	cmd.AddCommand(sub("dup <material>", fmt.Sprintf("Duplicate the selected %s", noun), material.OpDuplicate, ""))
	cmd.AddCommand(sub("hide <material>", fmt.Sprintf("Toggle visibility of a %s", noun), material.OpHide, "<index>"))
	cmd.AddCommand(sub("select <material>", fmt.Sprintf("Select a %s", noun), material.OpSelect, "<index>"))
	cmd.AddCommand(c.lsCommand(target, noun, &layer))

	return cmd
}

// runOp runs one engine command against the named material and saves it.
func (c *CLI) runOp(ctx context.Context, name string, target material.Target, op material.Op, args material.Args, layer int) error {
	return c.withMaterial(ctx, name, true, func(m *material.Material) error {
		if target == material.TargetMask && layer != stack.NoSelection {
			if _, err := m.SelectLayer(ctx, layer); err != nil {
				return err
			}
		}
		res, err := m.Exec(ctx, target, op, args)
		if err != nil {
			return err
		}
		printSuccess("%s", res.Status)
		if res.Selected != stack.NoSelection {
			printDetail("selected %d", res.Selected)
		}
		return nil
	})
}

// lsCommand prints a stack as a table.
func (c *CLI) lsCommand(target material.Target, noun string, layer *int) *cobra.Command {
	return &cobra.Command{
		Use:               "ls <material>",
		Short:             fmt.Sprintf("List the %s stack", noun),
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMaterial,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withMaterial(cmd.Context(), args[0], false, func(m *material.Material) error {
				snap := m.Snapshot()
				if target == material.TargetLayer {
					fmt.Println(StyleTitle.Render(snap.Name + " layers"))
					if len(snap.Layers) == 0 {
						printInfo("No layers")
						printNextStep("Add one", fmt.Sprintf("%s layer add %s COLOR", appName, snap.Name))
						return nil
					}
					fmt.Println(renderStack(layerRows(snap), -1, "Masks"))
					return nil
				}

				i := *layer
				if i == stack.NoSelection {
					i = snap.Selected
				}
				if i < 0 || i >= len(snap.Layers) {
					return errors.New(errors.ErrCodeNoActiveContext, "no layer selected")
				}
				fmt.Println(StyleTitle.Render(fmt.Sprintf("%s masks of layer %d", snap.Name, i)))
				rows := maskRows(snap, i)
				if len(rows) == 0 {
					printInfo("No masks")
					return nil
				}
				fmt.Println(renderStack(rows, -1, ""))
				return nil
			})
		},
	}
}
