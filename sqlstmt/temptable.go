// Package sqlstmt renders bulk modify-all statements that stage their rows
// in a temp table. The statements hold only field lists; every piece of SQL
// text comes from a platform.Platform.
package sqlstmt

import (
	"fmt"
	"io"

	"oxmapper/field"
	"oxmapper/internal/common"
	"oxmapper/platform"
)

//go:generate go tool stringer -type=Mode -trimprefix=Mode -output=mode_string.go

// Mode is the step of a temp-table modify-all a statement renders.
type Mode int

const (
	ModeCreateTempTable Mode = iota
	ModeInsertIntoTempTable
	ModeUpdateOriginalTable
	ModeCleanupTempTable
)

// Modes lists the steps in the order they run.
var Modes = []Mode{ModeCreateTempTable, ModeInsertIntoTempTable, ModeUpdateOriginalTable, ModeCleanupTempTable}

// UpdateAllForTempTable updates AssignedFields of every Table row that has a
// counterpart in the temp table, matched on PrimaryKeyFields.
type UpdateAllForTempTable struct {
	Table            field.Table
	PrimaryKeyFields []field.DatabaseField
	AssignedFields   []field.DatabaseField
	Mode             Mode
}

// UsedFields returns the primary key fields followed by the assigned fields,
// each field once.
func (s *UpdateAllForTempTable) UsedFields() []field.DatabaseField {
	return common.UnionBy(field.DatabaseField.Key, s.PrimaryKeyFields, s.AssignedFields)
}

// Write renders the statement for s.Mode.
func (s *UpdateAllForTempTable) Write(w io.Writer, p platform.Platform) error {
	switch s.Mode {
	case ModeCreateTempTable:
		return p.WriteCreateTempTableSQL(w, s.Table, s.UsedFields(), s.PrimaryKeyFields)
	case ModeInsertIntoTempTable:
		return p.WriteInsertIntoTempTableSQL(w, s.Table, s.UsedFields())
	case ModeUpdateOriginalTable:
		return p.WriteUpdateOriginalFromTempTableSQL(w, s.Table, s.PrimaryKeyFields, s.AssignedFields)
	case ModeCleanupTempTable:
		return p.WriteCleanupTempTableSQL(w, s.Table)
	default:
		return fmt.Errorf("unknown mode %v", s.Mode)
	}
}

// WriteAll renders every step in order, one statement per line.
func (s *UpdateAllForTempTable) WriteAll(w io.Writer, p platform.Platform) error {
	for _, m := range Modes {
		step := *s
		step.Mode = m

		if err := step.Write(w, p); err != nil {
			return fmt.Errorf("%v: %w", m, err)
		}

		if _, err := io.WriteString(w, ";\n"); err != nil {
			return fmt.Errorf("failed to write SQL: %w", err)
		}
	}

	return nil
}
