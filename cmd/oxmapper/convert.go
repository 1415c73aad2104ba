package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oxmapper/oxm"
)

func newConvertCommand(vp *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Read a bound XML document and write it as JSON or XML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var mediaType string
			switch to := vp.GetString("to"); to {
			case "json":
				mediaType = oxm.MediaTypeJSON
			case "xml":
				mediaType = oxm.MediaTypeXML
			default:
				return fmt.Errorf("unsupported output format %q", to)
			}

			project, err := buildProject(vp)
			if err != nil {
				return err
			}

			ctx, err := oxm.NewContext(project, oxm.WithLogger(log))
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open document: %w", err)
				}
				defer f.Close()

				in = f
			}

			obj, err := ctx.NewUnmarshaller(
				oxm.WithEventHandler(oxm.IgnoreErrors(vp.GetInt("ignore-errors"))),
			).Unmarshal(in)
			if err != nil {
				return err
			}

			opts := []oxm.MarshallerOption{oxm.WithMediaType(mediaType)}
			if vp.GetBool("pretty") {
				opts = append(opts, oxm.WithFormattedOutput())
			}

			out := cmd.OutOrStdout()
			if err := ctx.NewMarshaller(opts...).Marshal(out, obj); err != nil {
				return err
			}

			_, err = io.WriteString(out, "\n")

			return err
		},
	}

	flags := cmd.Flags()
	flags.String("to", "json", "output format (json, xml)")
	flags.Bool("pretty", false, "indent the output")
	flags.Int("ignore-errors", 0, "number of value decode errors to tolerate")

	return cmd
}
