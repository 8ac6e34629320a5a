package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/pages"
)

func inspectCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <page>",
		Short: "Show the holes of a page",
		Long: `Parse a page and list its holes in bind order: the name each
hole reads from the data file, the kind of part it binds to and the
position of its node in the template.

Examples:
  weft inspect index
  weft inspect index --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			dir := pages.Open(cfg.PagesPath())
			p, err := dir.Load(args[0])
			if err != nil {
				return err
			}
			holes, err := dir.Inspect(p)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(g.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"page": p.Name, "holes": holes, "missing": p.Missing()})
			}

			fmt.Fprintf(g.stdout, "%s: %d holes\n", p.Name, len(holes))
			for i, h := range holes {
				fmt.Fprintf(g.stdout, "  %-3d %-16s %-24s node %d\n", i, h.Name, h.Kind, h.Index)
			}
			if missing := p.Missing(); len(missing) > 0 {
				g.warn("no data for %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print holes as JSON")
	return cmd
}
