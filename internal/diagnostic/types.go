package diagnostic

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Diagnostics holds the findings of one validation run, split by severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic is a single finding about a class binding.
type Diagnostic struct {
	Severity DiagnosticSeverity
	// Code is a stable identifier, e.g. "unknown_type".
	Code    string
	Message string
	// Class is the binding type name, empty for file-level findings.
	Class string
	// Attribute is the mapped field, empty for class-level findings.
	Attribute string
}

// DiagnosticSeverity orders findings; only errors make bindings unusable.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return "unknown"
	}
}

func (d *Diagnostics) add(sev DiagnosticSeverity, code, message, class, attribute string) {
	diag := Diagnostic{
		Severity:  sev,
		Code:      code,
		Message:   message,
		Class:     class,
		Attribute: attribute,
	}

	switch sev {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError records a finding that makes the bindings unusable.
func (d *Diagnostics) AddError(code, message, class, attribute string) {
	d.add(DiagnosticError, code, message, class, attribute)
}

// AddWarning records a setting that is accepted but has no effect.
func (d *Diagnostics) AddWarning(code, message, class, attribute string) {
	d.add(DiagnosticWarning, code, message, class, attribute)
}

// AddInfo records how a setting was interpreted.
func (d *Diagnostics) AddInfo(code, message, class, attribute string) {
	d.add(DiagnosticInfo, code, message, class, attribute)
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid reports whether the bindings can be built; warnings are allowed.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// Codes returns the codes of all errors and warnings, errors first.
func (d *Diagnostics) Codes() []string {
	codes := make([]string, 0, len(d.Errors)+len(d.Warnings))
	for _, diag := range d.Errors {
		codes = append(codes, diag.Code)
	}

	for _, diag := range d.Warnings {
		codes = append(codes, diag.Code)
	}

	return codes
}

// All returns every finding, most severe first.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// WriteReport writes one "severity: finding" line per diagnostic at or above
// minimum.
func (d *Diagnostics) WriteReport(w io.Writer, minimum DiagnosticSeverity) error {
	for _, diag := range d.All() {
		if diag.Severity < minimum {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s: %s\n", diag.Severity, diag); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}

// Error returns the error diagnostics joined into one error, or nil.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	msgs := make([]string, len(d.Errors))
	for i, diag := range d.Errors {
		msgs[i] = diag.String()
	}

	return errors.New(strings.Join(msgs, "; "))
}

// String formats the finding as "[Class] Attribute: [code] message".
func (d Diagnostic) String() string {
	var b strings.Builder

	if d.Class != "" {
		b.WriteString("[" + d.Class + "]")
	}

	if d.Attribute != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}

		b.WriteString(d.Attribute)
	}

	if b.Len() > 0 {
		b.WriteString(": ")
	}

	if d.Code != "" {
		b.WriteString("[" + d.Code + "] ")
	}

	b.WriteString(d.Message)

	return b.String()
}
