package main

import (
	"flag"
	"fmt"
	"os"

	"memfmt/internal/lister"
)

func main() {
	snapshotDir := flag.String("ss_dir", "", "Path to the snapshot directory")
	configFile := flag.String("config", "", "Optional TOML or YAML settings file")
	children := flag.Bool("children", false, "Also list synthetic children of each value")
	debug := flag.Bool("debug", false, "Log diagnostics to stderr")
	pid := flag.Int("pid", 0, "Read values from this live process instead of the snapshot dumps")

	flag.Parse()

	if *snapshotDir == "" {
		fmt.Println("Memory Summary Lister : Error: Missing directory string on -ss_dir option")
		os.Exit(1)
	}

	cfg := lister.Config{
		SnapshotDir:  *snapshotDir,
		ConfigFile:   *configFile,
		Children:     *children,
		Debug:        *debug,
		Pid:          *pid,
		OutputWriter: os.Stdout,
		LogWriter:    os.Stderr,
	}

	if err := lister.Run(cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
