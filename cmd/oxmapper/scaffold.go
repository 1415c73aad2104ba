package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oxmapper/internal/logging/logfields"
	"oxmapper/internal/scaffold"
	"oxmapper/mapping"
)

func newScaffoldCommand(vp *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold <package>...",
		Short: "Generate a bindings file from the oxm tags of Go packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scaffold.NewScanner(log, scaffold.Options{
				Version:          "1",
				DefaultNamespace: vp.GetString("default-namespace"),
				Namespaces:       vp.GetStringMapString("namespace"),
				Dir:              vp.GetString("dir"),
			})

			bf, err := s.Scan(cmd.Context(), args...)
			if err != nil {
				return err
			}

			if out := vp.GetString("output"); out != "" {
				if err := mapping.WriteFile(bf, out); err != nil {
					return err
				}

				log.WithField(logfields.BindingFile, out).Infof("Wrote %d classes", len(bf.Classes))

				return nil
			}

			data, err := mapping.Marshal(bf)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "write the bindings to this file instead of stdout")
	flags.String("dir", "", "directory the packages are resolved from")
	flags.String("default-namespace", "", "namespace of unprefixed element steps")
	flags.StringToString("namespace", nil, "prefix=URI namespace declarations")

	return cmd
}
