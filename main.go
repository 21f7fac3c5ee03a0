package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bkubisiak/birdr-go/cmd"
	"github.com/bkubisiak/birdr-go/internal/conf"
	"github.com/bkubisiak/birdr-go/internal/datastore"
	"github.com/bkubisiak/birdr-go/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "birdr: %v\n", err)
		os.Exit(1)
	}

	logging.Init(settings.Debug)
	if settings.Log.Dir != "" {
		// File logging is best effort; a failure falls back to a no-op
		// logger inside the datastore package.
		_ = datastore.InitializeLogger(filepath.Join(settings.Log.Dir, "datastore.log"))
	}
	defer func() { _ = datastore.CloseLogger() }()

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
