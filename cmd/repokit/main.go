package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/suparena/repokit"
	"github.com/suparena/repokit/config"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	checkFlag   = flag.String("check", "", "Validate a YAML configuration file and exit")
	envFlag     = flag.String("env", "", "Load a .env file before validating configuration")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := repokit.GetVersionInfo()
		fmt.Printf("repokit version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if *checkFlag != "" {
		if *envFlag != "" {
			if err := config.LoadEnv(*envFlag); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		cfg, err := config.Load(*checkFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s: OK\n", *checkFlag)
		if cfg.Backends.Postgres != nil {
			fmt.Println("  backend: postgres")
		}
		if cfg.Backends.DDB != nil {
			fmt.Printf("  backend: ddb (table %s, region %s)\n",
				cfg.Backends.DDB.Table, cfg.Backends.DDB.Region)
		}
		os.Exit(0)
	}

	flag.Usage()
	os.Exit(2)
}
