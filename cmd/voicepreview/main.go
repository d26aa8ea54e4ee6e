// Command voicepreview renders one message key repeatedly and prints each
// distinct result, for manually auditing variation coverage.
//
// Context values come as key=value arguments: "true"/"false" parse as
// booleans, plain numbers as numbers, comma-separated values as string
// lists, everything else as strings.
//
//	voicepreview -key user.start.greeting -n 50 name=ana is_first_visit=true
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"voicebot/internal/application"
	"voicebot/internal/domain/entities"
	"voicebot/internal/infrastructure/catalog"
)

func main() {
	key := flag.String("key", "", "message key to preview")
	n := flag.Int("n", 50, "number of renders")
	flag.Parse()

	if *key == "" {
		fmt.Fprintln(os.Stderr, "voicepreview: -key is required")
		os.Exit(2)
	}

	rc := entities.RenderContext{}
	for _, arg := range flag.Args() {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "voicepreview: bad context argument %q, want key=value\n", arg)
			os.Exit(2)
		}
		rc[name] = parseValue(raw)
	}

	ctx := context.Background()
	defs, err := catalog.NewEmbeddedSource().Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicepreview: %v\n", err)
		os.Exit(1)
	}
	store, err := application.BuildStore(defs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voicepreview: %v\n", err)
		os.Exit(1)
	}

	// History off: the audit wants the full variant distribution.
	engine := application.NewEngine(store)

	seen := make(map[string]bool)
	var distinct []string
	for i := 0; i < *n; i++ {
		text, err := engine.Compose(ctx, *key, "", rc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "voicepreview: %v\n", err)
			os.Exit(1)
		}
		if !seen[text] {
			seen[text] = true
			distinct = append(distinct, text)
		}
	}

	fmt.Printf("%d distinct renderings over %d draws:\n", len(distinct), *n)
	for i, text := range distinct {
		fmt.Printf("--- %d ---\n%s\n", i+1, text)
	}
}

func parseValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if strings.Contains(raw, ",") {
		return strings.Split(raw, ",")
	}
	return raw
}
