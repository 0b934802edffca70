// Package version provides version information and the version
// command for the addrlink application.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	BuiltAt = "unknown"
	Builder = "unknown"
)

// Command returns the cobra command printing build information.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("addrlink %s\n", Version)
			fmt.Printf("Commit:     %s\n", Commit)
			fmt.Printf("Built at:   %s\n", BuiltAt)
			fmt.Printf("Built by:   %s\n", Builder)
			fmt.Printf("Go version: %s\n", runtime.Version())
		},
	}
}
