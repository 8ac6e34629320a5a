package publish

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/weft/internal/build"
	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
)

// HashMetadata is the object metadata key holding a page's content hash.
const HashMetadata = "sha256"

// Client is the part of the S3 API publishing uses. *s3.Client implements
// it.
type Client interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

var _ Client = (*s3.Client)(nil)

// NewClient creates an S3 client for cfg. A custom endpoint switches to
// path-style addressing, as S3-compatible stores expect.
func NewClient(cfg config.PublishConfig) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("E802").
			WithDetail("AWS credentials not set").
			WithSuggestion("Export AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
	}
	return creds, nil
}

// Options configures a Publisher.
type Options struct {
	Bucket string
	Prefix string

	// CacheControl is set on every uploaded page.
	CacheControl string

	// Force uploads pages whose stored hash already matches.
	Force bool

	// Prune deletes objects under Prefix the manifest does not list.
	Prune bool

	// DryRun reports what would change without touching the bucket.
	DryRun bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Result summarizes a publish.
type Result struct {
	Duration time.Duration
	Uploaded []string
	Skipped  []string
	Deleted  []string
	Bytes    int64
}

// Publisher uploads build output to a bucket.
type Publisher struct {
	client  Client
	options Options
}

// New creates a publisher.
func New(client Client, options Options) *Publisher {
	return &Publisher{client: client, options: options}
}

// Publish uploads the pages listed in outputDir's manifest.
func (p *Publisher) Publish(ctx context.Context, outputDir string) (*Result, error) {
	if p.options.Bucket == "" {
		return nil, errors.New("E802").
			WithDetail("No bucket configured").
			WithSuggestion("Set publish.bucket in weft.json or pass --bucket")
	}
	start := time.Now()
	manifest, err := build.ReadManifest(outputDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &Result{}
	keep := map[string]bool{p.key(build.ManifestFile): true}
	for _, name := range names {
		page := manifest[name]
		key := p.key(page.File)
		keep[key] = true

		if !p.options.Force && p.current(ctx, key, page.Hash) {
			result.Skipped = append(result.Skipped, key)
			continue
		}
		body, err := os.ReadFile(filepath.Join(outputDir, page.File))
		if err != nil {
			return nil, errors.New("E802").WithDetail(page.File).Wrap(err)
		}
		p.progress("Uploading " + key + "...")
		if err := p.put(ctx, key, body, "text/html; charset=utf-8", page.Hash); err != nil {
			return nil, err
		}
		result.Uploaded = append(result.Uploaded, key)
		result.Bytes += int64(len(body))
	}

	body, err := os.ReadFile(filepath.Join(outputDir, build.ManifestFile))
	if err != nil {
		return nil, errors.New("E802").Wrap(err)
	}
	p.progress("Uploading " + p.key(build.ManifestFile) + "...")
	if err := p.put(ctx, p.key(build.ManifestFile), body, "application/json", ""); err != nil {
		return nil, err
	}

	if p.options.Prune {
		deleted, err := p.prune(ctx, keep)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (p *Publisher) key(file string) string {
	prefix := p.options.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + file
}

// current reports whether key already holds content with hash. Lookup
// failures count as stale.
func (p *Publisher) current(ctx context.Context, key, hash string) bool {
	head, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.options.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false
	}
	return hash != "" && head.Metadata[HashMetadata] == hash
}

func (p *Publisher) put(ctx context.Context, key string, body []byte, contentType, hash string) error {
	if p.options.DryRun {
		return nil
	}
	in := &s3.PutObjectInput{
		Bucket:      aws.String(p.options.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}
	if p.options.CacheControl != "" {
		in.CacheControl = aws.String(p.options.CacheControl)
	}
	if hash != "" {
		in.Metadata = map[string]string{HashMetadata: hash}
	}
	if _, err := p.client.PutObject(ctx, in); err != nil {
		return errors.New("E802").WithDetail("upload " + key).Wrap(err)
	}
	return nil
}

func (p *Publisher) prune(ctx context.Context, keep map[string]bool) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(p.options.Bucket)}
	if p.options.Prefix != "" {
		input.Prefix = aws.String(p.key(""))
	}

	var stale []string
	paginator := s3.NewListObjectsV2Paginator(p.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New("E802").WithDetail("list objects").Wrap(err)
		}
		for _, obj := range page.Contents {
			if key := aws.ToString(obj.Key); key != "" && !keep[key] {
				stale = append(stale, key)
			}
		}
	}

	for _, key := range stale {
		p.progress("Deleting " + key + "...")
		if p.options.DryRun {
			continue
		}
		if _, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(p.options.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			return nil, errors.New("E802").WithDetail("delete " + key).Wrap(err)
		}
	}
	return stale, nil
}

func (p *Publisher) progress(step string) {
	if p.options.OnProgress != nil {
		p.options.OnProgress(step)
	}
}
