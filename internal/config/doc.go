// Package config provides configuration parsing for weft projects.
//
// The configuration is stored in weft.json (or weft.yaml) at the project
// root. This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "docs",
//	  "runtime": {
//	    "frameBudget": "5ms",
//	    "priority": "user-visible",
//	    "identifierPrefix": ":w"
//	  },
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "events": true
//	  },
//	  "render": {
//	    "pages": "pages",
//	    "output": "dist"
//	  },
//	  "publish": {
//	    "bucket": "docs-site",
//	    "region": "eu-west-1",
//	    "prefix": "v1/"
//	  },
//	  "metrics": {"enabled": true, "namespace": "docs"},
//	  "log": {"level": "debug", "format": "json"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Frame budget:", cfg.FrameBudget())
package config
