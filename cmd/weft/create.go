package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/templates"
)

func createCmd(g *globals) *cobra.Command {
	var (
		template string
		bucket   string
		region   string
	)

	cmd := &cobra.Command{
		Use:   "create <dir>",
		Short: "Create a new weft project",
		Long: `Create a new weft project in the given directory.

Templates:
  minimal   A config and one page (default)
  docs      Linked pages with publish settings

Examples:
  weft create site
  weft create handbook --template=docs --bucket=handbook-site`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := templates.Get(template)
			if err != nil {
				return err
			}
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := tmpl.Create(dir, templates.Config{Bucket: bucket, Region: region}); err != nil {
				return err
			}

			g.success("Created %s from the %s template", args[0], tmpl.Name)
			g.info("cd %s && weft serve", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "minimal", "Project template (minimal, docs)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket for the docs template")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for the docs template")
	return cmd
}
