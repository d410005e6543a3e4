// Package cli wires together the Cobra command tree for the cleandoc binary.
//
// It defines the root command and its subcommands (serve, clean, config,
// version), maps flags onto configuration keys, and returns exit codes that
// scripts can rely on.
package cli
