package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/project"
)

// initCommand creates an empty material.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <material>",
		Short: "Create an empty material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			existing, err := store.Get(ctx, name)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "load %s", name)
			}
			if existing != nil && !force {
				return errors.New(errors.ErrCodeNameCollision, "material %s already exists (use --force to replace it)", name)
			}

			opts, err := c.materialOptions()
			if err != nil {
				return err
			}
			m, err := material.New(name, opts...)
			if err != nil {
				return err
			}
			if err := project.Save(ctx, store, m); err != nil {
				return err
			}

			printSuccess("Created material %s", name)
			printKeyValue("Store", c.cfg.Store.Backend)
			printNextStep("Add a layer", fmt.Sprintf("%s layer add %s COLOR", appName, name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing material")
	return cmd
}
