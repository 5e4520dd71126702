package config

import "os"

// ExpandEnv expands environment variables in YAML content using the standard
// library's shell-style substitution. Both ${VAR} and $VAR are supported.
//
// Missing variables expand to the empty string; validation is responsible
// for catching required fields left empty this way.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
