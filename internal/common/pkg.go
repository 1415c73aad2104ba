package common

import (
	"path"
	"regexp"
)

var majorVersion = regexp.MustCompile(`^v[2-9][0-9]*$`)

// PkgAlias returns the name a binding uses for the package at pkgPath: its
// last path element, skipping a major version suffix such as "/v2".
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	if majorVersion.MatchString(base) {
		if parent := path.Dir(pkgPath); parent != "." && parent != "/" {
			return path.Base(parent)
		}
	}

	return base
}
