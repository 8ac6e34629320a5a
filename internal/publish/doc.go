// Package publish uploads prerendered pages to S3.
//
// Publish reads the manifest written by a build and uploads every page it
// lists, followed by the manifest itself. Objects whose stored content hash
// matches the manifest are skipped unless Force is set, and with Prune the
// objects under the prefix that the manifest no longer lists are deleted.
//
//	client := publish.NewClient(cfg.Publish)
//	p := publish.New(client, publish.Options{
//	    Bucket: cfg.Publish.Bucket,
//	    Prefix: cfg.Publish.Prefix,
//	})
//	result, err := p.Publish(ctx, cfg.OutputPath())
//
// Credentials come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN.
package publish
