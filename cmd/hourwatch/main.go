package main

import (
	"os"

	"github.com/joshsymonds/hourwatch/internal/runtime"
)

// version is set at build time.
var version = "dev"

func main() {
	root := newRootCmd()
	root.Version = version
	if err := root.Execute(); err != nil {
		runtime.DefaultLogger().Error("hourwatch failed", "error", err)
		os.Exit(1)
	}
}
