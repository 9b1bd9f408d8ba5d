package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/ternarybob/fundscope/internal/common"
)

type versionCmd struct {
	full bool
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print version information" }
func (*versionCmd) Usage() string {
	return `fundscope version [-full]
`
}

func (v *versionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&v.full, "full", false, "Include build and commit details")
}

func (v *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if v.full {
		fmt.Printf("Fundscope %s\n", common.GetFullVersion())
	} else {
		fmt.Printf("Fundscope version %s\n", common.GetVersion())
	}
	return subcommands.ExitSuccess
}
