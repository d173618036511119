package main

import (
	"expvar"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gowvp/owlview/internal/app"
	"github.com/gowvp/owlview/internal/conf"
	"github.com/ixugo/goddd/pkg/system"
)

// 通过 -ldflags 注入
var (
	buildVersion = "0.0.1"
	gitBranch    = "dev"
	gitHash      = "debug"
)

var configDir = flag.String("conf", "./configs", "config directory, eg: -conf /configs/")

func main() {
	flag.Parse()
	expvar.NewString("version").Set(buildVersion)
	expvar.NewString("git_branch").Set(gitBranch)
	expvar.NewString("git_hash").Set(gitHash)

	dir := *configDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(system.Getwd(), dir)
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err == nil {
		path = filepath.Join(dir, "config.yaml")
	}

	bc, err := conf.SetupConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "setup config:", err)
		os.Exit(1)
	}
	bc.ConfigPath = path
	bc.BuildVersion = buildVersion

	if err := app.Run(&bc); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
