package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func versionCmd(g *globals) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print version, commit, and build information for the weft CLI.`,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(g.stdout, version)
				return
			}
			fmt.Fprintf(g.stdout, "  Version:    %s\n", version)
			fmt.Fprintf(g.stdout, "  Commit:     %s\n", commit)
			fmt.Fprintf(g.stdout, "  Built:      %s\n", date)
			fmt.Fprintf(g.stdout, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(g.stdout, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
