package main

import (
	"fmt"
	"os"

	"github.com/arpita1049/Prashikshan-final/internal/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %s\n", util.RedactSecrets(err.Error()))
		os.Exit(1)
	}
}
