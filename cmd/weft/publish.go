package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/build"
	"github.com/vango-dev/weft/internal/publish"
)

func publishCmd(g *globals) *cobra.Command {
	var (
		bucket   string
		prefix   string
		region   string
		endpoint string
		render   bool
		force    bool
		prune    bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload rendered pages to S3",
		Long: `Upload the pages listed in the output directory's manifest to an
S3 bucket. Pages whose stored hash matches are skipped.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
and AWS_SESSION_TOKEN.

Examples:
  weft publish --render
  weft publish --bucket=docs-site --prefix=v2/ --prune
  weft publish --endpoint=http://localhost:9000 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			overrides := []struct {
				flag  string
				field *string
			}{
				{bucket, &cfg.Publish.Bucket},
				{prefix, &cfg.Publish.Prefix},
				{region, &cfg.Publish.Region},
				{endpoint, &cfg.Publish.Endpoint},
			}
			for _, o := range overrides {
				if o.flag != "" {
					*o.field = o.flag
				}
			}

			ctx, cancel := signalContext()
			defer cancel()

			if render {
				result, err := build.New(cfg, build.Options{
					Logger:     g.logger(cfg),
					OnProgress: func(step string) { g.info(step) },
				}).Build(ctx)
				if err != nil {
					return err
				}
				g.success("Rendered %d pages", len(result.Pages))
			}

			p := publish.New(publish.NewClient(cfg.Publish), publish.Options{
				Bucket:       cfg.Publish.Bucket,
				Prefix:       cfg.Publish.Prefix,
				CacheControl: cfg.Publish.CacheControl,
				Force:        force,
				Prune:        prune,
				DryRun:       dryRun,
				OnProgress:   func(step string) { g.info(step) },
			})
			result, err := p.Publish(ctx, cfg.OutputPath())
			if err != nil {
				return err
			}

			verb := "Published"
			if dryRun {
				verb = "Would publish"
			}
			g.success("%s %d pages (%s) to s3://%s/%s in %s", verb, len(result.Uploaded), formatBytes(result.Bytes),
				cfg.Publish.Bucket, cfg.Publish.Prefix, result.Duration.Round(time.Millisecond))
			if len(result.Skipped) > 0 {
				g.info("%d unchanged", len(result.Skipped))
			}
			if len(result.Deleted) > 0 {
				g.info("%d deleted", len(result.Deleted))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket (default from config)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from config)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL (default from config)")
	cmd.Flags().BoolVar(&render, "render", false, "Render pages before publishing")
	cmd.Flags().BoolVar(&force, "force", false, "Upload pages even when unchanged")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete objects under the prefix that are no longer rendered")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without uploading")

	return cmd
}
