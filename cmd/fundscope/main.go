// -----------------------------------------------------------------------
// Fundscope - fundamental snapshot of listed equities
// -----------------------------------------------------------------------

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	// Secrets such as FUNDSCOPE_EODHD_API_KEY may live in a dotenv file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("warning: failed to load .env: " + err.Error() + "\n")
	}

	// Exits when invoked by the shell for completion (COMP_LINE set)
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// commands lists every subcommand, used for registration and completion
var commands = []subcommands.Command{
	&serveCmd{},
	&analyzeCmd{},
	&normalizeCmd{},
	&versionCmd{},
}
