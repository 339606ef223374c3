// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/argonaut/pkg/manifest"
)

// cardCmd prints the agent manifest with generated state schemas.
func cardCmd(args []string) {
	fs := flag.NewFlagSet("card", flag.ExitOnError)
	asYAML := fs.Bool("yaml", false, "print YAML instead of JSON")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}

	m, err := manifest.Default(version)
	if err != nil {
		fatal(err)
	}
	payload, err := m.JSON()
	if err != nil {
		fatal(err)
	}
	if *asYAML {
		// Round-trip through JSON so the embedded raw schemas render as
		// YAML mappings instead of binary blobs.
		var doc map[string]any
		if err := json.Unmarshal(payload, &doc); err != nil {
			fatal(err)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			fatal(err)
		}
		fmt.Fprint(os.Stdout, string(out))
		return
	}
	fmt.Fprintln(os.Stdout, string(payload))
}
