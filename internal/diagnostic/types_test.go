package diagnostic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	var d Diagnostics
	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddWarning("xop_on_attribute", "attribute cannot hold an xop:Include", "model.Document", "Photo")
	assert.True(t, d.IsValid())

	d.AddError("unknown_type", `type "model.Missing" not registered`, "model.Missing", "")
	d.AddInfo("attribute_inline", "always inline", "", "Thumb")

	assert.True(t, d.HasErrors())
	assert.Equal(t, []string{"unknown_type", "xop_on_attribute"}, d.Codes())
	assert.EqualError(t, d.Error(), `[model.Missing]: [unknown_type] type "model.Missing" not registered`)

	d.AddError("dup", "duplicate", "", "")
	assert.EqualError(t, d.Error(), `[model.Missing]: [unknown_type] type "model.Missing" not registered; [dup] duplicate`)

	all := d.All()
	require.Len(t, all, 4)
	assert.Equal(t, DiagnosticError, all[0].Severity)
	assert.Equal(t, DiagnosticInfo, all[3].Severity)
}

func TestDiagnostic_String(t *testing.T) {
	assert.Equal(t, "[model.Doc] Photo: [c] m", Diagnostic{Code: "c", Message: "m", Class: "model.Doc", Attribute: "Photo"}.String())
	assert.Equal(t, "Photo: m", Diagnostic{Message: "m", Attribute: "Photo"}.String())
	assert.Equal(t, "m", Diagnostic{Message: "m"}.String())
}

func TestWriteReport(t *testing.T) {
	var d Diagnostics
	d.AddInfo("i", "note", "", "")
	d.AddWarning("w", "ignored", "model.Doc", "")
	d.AddError("e", "broken", "", "")

	var b strings.Builder
	require.NoError(t, d.WriteReport(&b, DiagnosticWarning))
	assert.Equal(t, "error: [e] broken\nwarning: [model.Doc]: [w] ignored\n", b.String())
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(9).String())
}
