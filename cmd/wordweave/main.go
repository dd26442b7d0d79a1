// Command wordweave annotates web pages with Chinese vocabulary from the
// selected word lists, and manages those lists.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: wordweave [-config file] <command> [flags] [args]

commands:
  annotate [-lists ids] [-personal file] [-reader] [-out dir] <url|file>...
  serve
  select [list ids...]
  words list|search <query>|add <id>|remove <id>|clear
  history <url>
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "wordweave: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("wordweave", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to the YAML config file (default $WORDWEAVE_CONFIG or ./wordweave.yaml)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	a, err := newApp(*configPath, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "annotate":
		return a.annotate(ctx, rest)
	case "serve":
		return a.serve(ctx)
	case "select":
		return a.selectLists(ctx, rest)
	case "words":
		return a.words(ctx, rest)
	case "history":
		return a.history(rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
