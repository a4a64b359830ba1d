// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `loadFrom` calls `validateStruct` immediately after it unmarshals and
// defaults the merged Koanf tree.  Any tag mismatch aborts startup, so the
// binary never runs with a malformed listen address, a negative limit, or
// a nonsense region code.  Missing spreadsheet settings are deliberately
// not checked here.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
