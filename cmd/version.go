// =============================================================================
// CRM Contact Importer - Version Command
// =============================================================================
//
// 'importer version' prints the release, build date and the Go toolchain and
// platform the binary was built for. Release builds stamp Version and
// BuildDate through ldflags.
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Stamped by release builds:
//
//	-ldflags "-X github.com/ginjaninja78/crm-contact-importer/cmd.Version=v1.2.0
//	          -X github.com/ginjaninja78/crm-contact-importer/cmd.BuildDate=2024-01-15"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the importer version and build details",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "CRM Contact Importer")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
