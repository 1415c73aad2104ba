// Package scaffold derives a binding file from the `oxm` struct tags of Go
// source packages.
//
// It loads the packages with golang.org/x/tools/go/packages and reads the
// tags from go/types, so the scanned packages are never imported or run.
// A struct is bound when its XMLName field carries a tag; the tags of its
// other exported fields become attribute bindings exactly as
// mapping.FromStruct would derive them at run time.
package scaffold
