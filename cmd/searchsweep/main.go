// Command searchsweep measures iterative and recursive linear search across
// a sweep of input sizes.
package main

import (
	"fmt"
	"os"

	"github.com/eunmann/searchsweep/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
