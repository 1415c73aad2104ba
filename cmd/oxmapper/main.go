// Command oxmapper works with object/XML bindings.
//
// It validates and inspects binding files, scaffolds them from the `oxm`
// tags of Go packages, converts documents between XML and JSON, and
// renders the temp-table SQL of a bulk update for a database platform.
//
// Settings come from flags, OXMAPPER_* environment variables and an
// optional .oxmapper.yaml in the working directory.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
