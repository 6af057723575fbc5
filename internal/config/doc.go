// Package config holds the phishguard configuration and the code that
// layers it together: built-in defaults, the YAML file, PHISHGUARD_*
// environment variables (optionally read from a .env file), and finally
// the CLI flags applied by the cmd package.
package config
