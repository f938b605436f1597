//go:build tinygo || !cgo

package surface

import "errors"

var errNoCGO = errors.New("require cgo for window rendering")

// Run requires cgo and always fails in this build.
func Run(cfg Config) error {
	return errNoCGO
}

// DialogAlert requires cgo and does nothing in this build.
func DialogAlert(title, message string) {}
