package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oxmapper/field"
	"oxmapper/internal/logging/logfields"
	"oxmapper/platform"
	"oxmapper/sqlstmt"
)

func newSQLCommand(vp *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql <table>",
		Short: "Render the temp-table statements of a bulk update",
		Long: "Render the statements that update the assigned columns of every row of\n" +
			"<table> from a staged temp table, matched on the primary key columns.\n" +
			"Columns are given as NAME or NAME:TYPE, e.g. --pk ID:BIGINT --set STATUS:VARCHAR(20).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := platform.ForName(vp.GetString("platform"))
			if err != nil {
				return err
			}

			// Column types may contain commas, so these bypass viper's CSV splitting.
			pks, err := cmd.Flags().GetStringArray("pk")
			if err != nil {
				return err
			}

			assigned, err := cmd.Flags().GetStringArray("set")
			if err != nil {
				return err
			}

			stmt := &sqlstmt.UpdateAllForTempTable{
				Table:            field.Table{Name: args[0], Schema: vp.GetString("schema")},
				PrimaryKeyFields: parseColumns(pks),
				AssignedFields:   parseColumns(assigned),
			}

			log.WithField(logfields.Platform, p.Name()).Debugf("Rendering update of %s", stmt.Table)

			if err := stmt.WriteAll(cmd.OutOrStdout(), p); err != nil {
				return fmt.Errorf("failed to render %s: %w", stmt.Table, err)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("platform", "database", "database platform ("+strings.Join(platform.Names(), ", ")+")")
	flags.String("schema", "", "schema of the table")
	flags.StringArray("pk", nil, "primary key column, repeatable")
	flags.StringArray("set", nil, "assigned column, repeatable")

	return cmd
}

func parseColumns(cols []string) []field.DatabaseField {
	fields := make([]field.DatabaseField, 0, len(cols))
	for _, col := range cols {
		name, sqlType, _ := strings.Cut(col, ":")
		fields = append(fields, field.Column(strings.TrimSpace(name), strings.TrimSpace(sqlType)))
	}

	return fields
}
