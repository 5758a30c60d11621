package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examly/internal/assessment/httpapi"
	"github.com/abhisek/examly/internal/assessment/server"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "examly", version)
		fmt.Fprintf(out, "api %s (client needs %s or newer)\n", server.APIVersion, httpapi.MinServerVersion)
	},
}
