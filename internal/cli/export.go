package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/export"
	"github.com/matzehuels/matlayer/pkg/material"
)

// exportCommand plans the texture export of a material.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		object   string
		folder   string
		format   string
		channels string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:               "export <material>",
		Short:             "Plan the texture bake for a material",
		Long:              `Export lists the bake jobs for every enabled material channel: image name, output path, format, and post-processing (roughness inversion, DirectX normal flip). Settings come from the [export] config section; flags override them.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMaterial,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := export.FromConfig(c.cfg.Export)
			if folder != "" {
				settings.Folder = folder
			}
			if format != "" {
				settings.Format = strings.ToUpper(format)
			}
			if channels != "" {
				settings.Channels = strings.Split(strings.ToUpper(channels), ",")
			}
			if object == "" {
				object = args[0]
			}

			return c.withMaterial(cmd.Context(), args[0], false, func(m *material.Material) error {
				plan, err := export.Build(m, object, settings)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(plan)
				}

				fmt.Println(StyleTitle.Render(fmt.Sprintf("Export %s onto %s", plan.Material, plan.Object)))
				printKeyValue("Texture", plan.Texture)
				printKeyValue("Folder", plan.Dir)
				for _, job := range plan.Jobs {
					var notes []string
					if job.Invert {
						notes = append(notes, "invert")
					}
					if job.FlipGreen {
						notes = append(notes, "flip green")
					}
					printInfo("%-17s %dx%d %d-bit %s", job.Channel, job.Width, job.Height, job.BitDepth, strings.Join(notes, ", "))
					printFile(job.Path)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&object, "object", "", "object the material is baked onto (default: material name)")
	cmd.Flags().StringVar(&folder, "folder", "", "export base folder")
	cmd.Flags().StringVar(&format, "format", "", "image format: png, jpg, targa, exr")
	cmd.Flags().StringVar(&channels, "channels", "", "comma-separated channels to bake")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}
