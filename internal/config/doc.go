// Package config loads the optional restobridge.hcl settings file and
// merges it over built-in defaults. The file describes where the Python
// pipeline lives and how the bridge server listens; command-line flags
// override both.
package config
