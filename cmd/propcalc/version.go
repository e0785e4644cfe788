package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0"
	GitCommit = "dev"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the propcalc build version, commit and platform.",
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("propcalc"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Version:"), paramStyle.Render(Version))
	fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Git Commit:"), paramStyle.Render(GitCommit))
	fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Build Date:"), paramStyle.Render(BuildDate))
	fmt.Fprintf(out, "%s %s\n", dimStyle.Render("Go Version:"), paramStyle.Render(runtime.Version()))
	fmt.Fprintf(out, "%s %s/%s\n", dimStyle.Render("Platform:"), paramStyle.Render(runtime.GOOS), paramStyle.Render(runtime.GOARCH))
}
