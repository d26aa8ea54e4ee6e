// Command voicelint scans the full variant catalog against the house-style
// rule set. Intended as a pre-submit hook: it prints one line per violation
// and exits non-zero when anything at or above the threshold severity is
// found.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"voicebot/internal/application"
	"voicebot/internal/domain/entities"
	"voicebot/internal/infrastructure/catalog"
)

func main() {
	failOn := flag.String("fail-on", "warning", "lowest severity that fails the run (info|warning|error)")
	flag.Parse()

	threshold, err := entities.ParseSeverity(*failOn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicelint: %v\n", err)
		os.Exit(2)
	}

	defs, err := catalog.NewEmbeddedSource().Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicelint: %v\n", err)
		os.Exit(2)
	}
	store, err := application.BuildStore(defs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicelint: %v\n", err)
		os.Exit(2)
	}
	rules, err := catalog.NewEmbeddedRules().Rules()
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicelint: %v\n", err)
		os.Exit(2)
	}
	linter, err := application.NewLinter(rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicelint: %v\n", err)
		os.Exit(2)
	}

	violations := linter.Scan(store)
	failed := false
	for _, v := range violations {
		fmt.Println(v.String())
		if v.Severity >= threshold {
			failed = true
		}
	}

	fmt.Printf("scanned %d keys, %d violations\n", store.Len(), len(violations))
	if failed {
		os.Exit(1)
	}
}
