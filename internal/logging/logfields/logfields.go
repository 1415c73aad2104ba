// Package logfields defines the structured field names used in log entries.
package logfields

const (
	// LogSubsys is the subsystem that emitted the entry.
	LogSubsys = "subsys"

	Attribute   = "attribute"
	Class       = "class"
	ContentID   = "contentID"
	Element     = "element"
	MimeType    = "mimeType"
	Strategy    = "strategy"
	Severity    = "severity"
	Platform    = "platform"
	Path        = "path"
	BindingFile = "bindingFile"
)
