// Copyright (c) 2026 TerraDesk Team
// TerraDesk - geospatial platform admin console
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for the TerraDesk admin console.
//
// Usage:
//
//	go run . [flags]
//	./terradesk [flags]
//
// This launches the TerraDesk console. See --help for options.
package main

import (
	"log"
	"os"

	"github.com/terradesk/terradesk/ui/cli"
)

// version is set at build time using -ldflags, e.g.:
// go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		log.Printf("terradesk: %v", err)
		os.Exit(1)
	}
}
