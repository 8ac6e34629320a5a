// Package build prerenders a project's pages.
//
// Every page in the configured pages directory is rendered through a server
// host and written to the output directory, together with a manifest that
// records the size and content hash of each file:
//
//	dist/
//	├── index.html
//	├── about.html
//	└── manifest.json
//
// # Usage
//
//	builder := build.New(cfg, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Rendered %d pages in %s\n", len(result.Pages), result.Duration)
//
// # Manifest
//
// The manifest maps page names to their output:
//
//	{
//	  "index": {"file": "index.html", "size": 1024, "sha256": "a1b2c3..."}
//	}
package build
