// Command refresher summarizes a few notes from a Markdown vault every day.
package main

import (
	"context"
	"fmt"
	"os"

	"daily-refresher/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
