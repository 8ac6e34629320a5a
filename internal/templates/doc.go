// Package templates provides project scaffolding templates.
//
// # Available Templates
//
//   - minimal: a weft.json and a single page with its data
//   - docs: a weft.yaml with publish settings and a few linked pages
//
// # Usage
//
//	tmpl, err := templates.Get("docs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := tmpl.Create(projectDir, templates.Config{ProjectName: "handbook"}); err != nil {
//	    log.Fatal(err)
//	}
//
// # Template Variables
//
// File contents are text/template sources with these variables:
//
//	{{.ProjectName}}  - Name of the project
//	{{.Bucket}}       - S3 bucket pages are published to
//	{{.Region}}       - AWS region of the bucket
package templates
