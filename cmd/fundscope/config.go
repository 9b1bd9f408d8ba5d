package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// configFlags are shared by every command that needs configuration
type configFlags struct {
	files configPaths
}

func (c *configFlags) register(f *flag.FlagSet) {
	f.Var(&c.files, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	f.Var(&c.files, "c", "Configuration file path (shorthand)")
}

// load resolves configuration: defaults -> files -> env.
// fundscope.toml in the working directory is used when no file is given.
func (c *configFlags) load() (*common.Config, error) {
	files := c.files
	if len(files) == 0 {
		if _, err := os.Stat("fundscope.toml"); err == nil {
			files = append(files, "fundscope.toml")
		} else if _, err := os.Stat("deployments/local/fundscope.toml"); err == nil {
			files = append(files, "deployments/local/fundscope.toml")
		}
	}
	c.files = files
	return common.LoadFromFiles(files...)
}

// quietLogger keeps CLI output clean: only warnings and errors reach the console
func quietLogger(config *common.Config, verbose bool) arbor.ILogger {
	if !verbose {
		config.Logging.Level = "warn"
	}
	return common.SetupLogger(config)
}
