package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oxmapper/internal/diagnostic"
	"oxmapper/mapping"
	"oxmapper/store"
)

func newCheckCommand(vp *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate bindings against the registered types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bf, err := loadBindings(vp)
			if err != nil {
				return err
			}

			diags := mapping.Validate(bf, store.Types(), mapping.Converters{})

			out := cmd.OutOrStdout()

			minimum := diagnostic.DiagnosticWarning
			if vp.GetBool("verbose") {
				minimum = diagnostic.DiagnosticInfo
			}

			if err := diags.WriteReport(out, minimum); err != nil {
				return err
			}

			if diags.HasErrors() {
				return fmt.Errorf("invalid bindings: %d errors", len(diags.Errors))
			}

			fmt.Fprintf(out, "%d classes OK\n", len(bf.Classes))

			return nil
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "also report how settings were interpreted")

	return cmd
}
