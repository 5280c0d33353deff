// Command samprep prepares single-cell samples for cross-species alignment.
package main

import (
	"os"

	"github.com/samap-tools/samprep/internal/cmd"
	"github.com/samap-tools/samprep/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
