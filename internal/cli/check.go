package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/errors"
)

// checkCommand verifies that stored materials still mirror their stacks.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [material...]",
		Short: "Verify node names against the layer and mask stacks",
		Long:  `Check loads each material and verifies that every layer and mask maps to exactly one node with the expected name. Without arguments every stored material is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			names := args
			if len(names) == 0 {
				if names, err = store.List(ctx); err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "list materials")
				}
			}
			if len(names) == 0 {
				printInfo("No materials stored")
				return nil
			}

			opts, err := c.materialOptions()
			if err != nil {
				return err
			}
			failed := 0
			for _, name := range names {
				doc, err := store.Get(ctx, name)
				if err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "load %s", name)
				}
				if doc == nil {
					printWarning("%s: not found", name)
					failed++
					continue
				}
				// Document.Material runs the consistency check.
				if _, err := doc.Material(opts...); err != nil {
					printError("%s: %s", name, errors.UserMessage(err))
					failed++
					continue
				}
				printSuccess("%s", name)
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeDesync, "%d of %d materials failed the check", failed, len(names))
			}
			return nil
		},
	}
}
