// Command imola scores and browses a keyword-role text corpus.
package main

import (
	"os"

	"github.com/raysh454/imola/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
