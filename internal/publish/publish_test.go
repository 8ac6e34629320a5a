package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/internal/build"
	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
)

type object struct {
	body         string
	contentType  string
	cacheControl string
	metadata     map[string]string
}

// fakeBucket is an in-memory Client.
type fakeBucket struct {
	objects map[string]object
	puts    []string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string]object)}
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	b.objects[key] = object{
		body:         string(body),
		contentType:  aws.ToString(in.ContentType),
		cacheControl: aws.ToString(in.CacheControl),
		metadata:     in.Metadata,
	}
	b.puts = append(b.puts, key)
	return &s3.PutObjectOutput{}, nil
}

func (b *fakeBucket) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	obj, ok := b.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: obj.metadata}, nil
}

func (b *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(b.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (b *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for key := range b.objects {
		if len(key) >= len(aws.ToString(in.Prefix)) && key[:len(aws.ToString(in.Prefix))] == aws.ToString(in.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

// buildSite prerenders two pages into a temporary output directory.
func buildSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.PagesPath(), 0755); err != nil {
		t.Fatal(err)
	}
	for name, markup := range map[string]string{"index.html": `<h1>home</h1>`, "about.html": `<p>about</p>`} {
		if err := os.WriteFile(filepath.Join(cfg.PagesPath(), name), []byte(markup), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := build.New(cfg, build.Options{}).Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	return cfg.OutputPath()
}

func TestPublish(t *testing.T) {
	out := buildSite(t)
	bucket := newFakeBucket()
	p := New(bucket, Options{Bucket: "site", Prefix: "v1", CacheControl: "max-age=60"})

	result, err := p.Publish(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"v1/about.html", "v1/index.html"}, result.Uploaded); diff != "" {
		t.Errorf("uploaded mismatch (-want +got):\n%s", diff)
	}
	index := bucket.objects["v1/index.html"]
	if index.contentType != "text/html; charset=utf-8" || index.cacheControl != "max-age=60" {
		t.Errorf("index object = %+v", index)
	}
	if index.metadata[HashMetadata] == "" {
		t.Error("index uploaded without its hash")
	}
	if _, ok := bucket.objects["v1/"+build.ManifestFile]; !ok {
		t.Error("manifest not uploaded")
	}

	bucket.puts = nil
	result, err = p.Publish(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Uploaded) != 0 || len(result.Skipped) != 2 {
		t.Errorf("republish uploaded %v, skipped %v", result.Uploaded, result.Skipped)
	}
	if diff := cmp.Diff([]string{"v1/" + build.ManifestFile}, bucket.puts); diff != "" {
		t.Errorf("puts mismatch (-want +got):\n%s", diff)
	}

	forced, err := New(bucket, Options{Bucket: "site", Prefix: "v1/", Force: true}).Publish(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if len(forced.Uploaded) != 2 {
		t.Errorf("forced publish uploaded %v", forced.Uploaded)
	}
}

func TestPublishPrune(t *testing.T) {
	out := buildSite(t)
	bucket := newFakeBucket()
	bucket.objects["v1/old.html"] = object{body: "old"}
	bucket.objects["v2/other.html"] = object{body: "other"}

	dry, err := New(bucket, Options{Bucket: "site", Prefix: "v1", Prune: true, DryRun: true}).Publish(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"v1/old.html"}, dry.Deleted); diff != "" {
		t.Errorf("dry run deleted mismatch (-want +got):\n%s", diff)
	}
	if len(bucket.puts) != 0 || len(bucket.objects) != 2 {
		t.Errorf("dry run touched the bucket: puts %v, %d objects", bucket.puts, len(bucket.objects))
	}

	result, err := New(bucket, Options{Bucket: "site", Prefix: "v1", Prune: true}).Publish(context.Background(), out)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"v1/old.html"}, result.Deleted); diff != "" {
		t.Errorf("deleted mismatch (-want +got):\n%s", diff)
	}
	if _, ok := bucket.objects["v1/old.html"]; ok {
		t.Error("stale object survived prune")
	}
	if _, ok := bucket.objects["v2/other.html"]; !ok {
		t.Error("prune deleted outside the prefix")
	}
}

func TestPublishErrors(t *testing.T) {
	if _, err := New(newFakeBucket(), Options{}).Publish(context.Background(), t.TempDir()); !errors.HasCode(err, "E802") {
		t.Errorf("no bucket error = %v, want E802", err)
	}
	if _, err := New(newFakeBucket(), Options{Bucket: "site"}).Publish(context.Background(), t.TempDir()); !errors.HasCode(err, "E802") {
		t.Errorf("no manifest error = %v, want E802", err)
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials(context.Background()); !errors.HasCode(err, "E802") {
		t.Errorf("missing credentials error = %v, want E802", err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "id" || !creds.HasKeys() {
		t.Errorf("credentials = %+v", creds)
	}

	client := NewClient(config.PublishConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000"})
	if got := client.Options(); got.Region != "eu-west-1" || !got.UsePathStyle || aws.ToString(got.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("client options = region %q path-style %v endpoint %q", got.Region, got.UsePathStyle, aws.ToString(got.BaseEndpoint))
	}
}
