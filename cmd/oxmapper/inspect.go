package main

import (
	"fmt"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newInspectCommand(vp *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [class...]",
		Short: "Dump the resolved descriptors of bound classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := buildProject(vp)
			if err != nil {
				return err
			}

			cfg := spew.ConfigState{
				Indent:                  "  ",
				MaxDepth:                vp.GetInt("depth"),
				DisablePointerAddresses: true,
				DisableCapacities:       true,
				SortKeys:                true,
			}

			out := cmd.OutOrStdout()
			found := 0

			for _, cd := range project.Classes {
				if len(args) > 0 && !slices.Contains(args, cd.Name) {
					continue
				}

				found++

				fmt.Fprintf(out, "%s <%s>\n", cd.Name, cd.Root.QualifiedName())
				for _, d := range cd.Mappings {
					fmt.Fprintf(out, "  %s %s\n", d.Attribute, d.Kind)
					cfg.Fdump(out, d)
				}
			}

			if found == 0 && len(args) > 0 {
				return fmt.Errorf("no bound class named %v", args)
			}

			return nil
		},
	}

	cmd.Flags().Int("depth", 2, "maximum nesting depth of dumped descriptors")

	return cmd
}
