package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/lists"
)

// selectLists saves the list selection, or prints it when no ids are given.
func (a *app) selectLists(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		selected, err := a.store.SelectedLists(ctx)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Fprintf(a.stdout, "%s (default)\n", lists.DefaultListID)
			return nil
		}
		fmt.Fprintln(a.stdout, strings.Join(selected, " "))
		return nil
	}

	catalog := lists.DefaultCatalog()
	for _, id := range ids {
		if _, ok := catalog.File(id); !ok && id != lists.PersonalID {
			return fmt.Errorf("%w: %q (available: %s %s)", lists.ErrUnknownList, id, strings.Join(catalog.IDs(), " "), lists.PersonalID)
		}
	}
	return a.store.SetSelectedLists(ctx, ids)
}

func (a *app) words(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: words needs a subcommand", errUsage)
	}
	switch args[0] {
	case "list":
		words, err := a.store.PersonalWords(ctx)
		if err != nil {
			return err
		}
		a.printRecords(words)
		return nil

	case "search":
		fs := flag.NewFlagSet("words search", flag.ContinueOnError)
		fs.SetOutput(a.stderr)
		limit := fs.Int("limit", dictionary.DefaultSearchLimit, "Maximum number of results")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		if fs.NArg() == 0 {
			return fmt.Errorf("%w: words search needs a query", errUsage)
		}
		all, err := lists.ResolveAll(ctx, a.resolver, lists.DefaultCatalog())
		if err != nil {
			a.logger.Debug("some lists unavailable for search", zap.Error(err))
		}
		a.printRecords(dictionary.Search(all, strings.Join(fs.Args(), " "), *limit))
		return nil

	case "add":
		id, err := wordID(args)
		if err != nil {
			return err
		}
		all, _ := lists.ResolveAll(ctx, a.resolver, lists.DefaultCatalog())
		for _, r := range all {
			if r.ID != id {
				continue
			}
			added, err := a.store.AddPersonalWord(ctx, r)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(a.stdout, "added %s (%s)\n", r.ScriptForm, r.PhoneticForm)
			} else {
				fmt.Fprintf(a.stdout, "%s is already in the personal list\n", r.ScriptForm)
			}
			return nil
		}
		return fmt.Errorf("no word with id %d in the catalog", id)

	case "remove":
		id, err := wordID(args)
		if err != nil {
			return err
		}
		removed, err := a.store.RemovePersonalWord(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no word with id %d in the personal list", id)
		}
		return nil

	case "clear":
		return a.store.ClearPersonalWords(ctx)

	default:
		return fmt.Errorf("%w: unknown words subcommand %q", errUsage, args[0])
	}
}

func wordID(args []string) (int, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("%w: %s needs one word id", errUsage, args[0])
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid word id %q", args[1])
	}
	return id, nil
}

func (a *app) printRecords(records []dictionary.Record) {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, r := range records {
		meaning := ""
		if len(r.Translations) > 0 {
			meaning = r.Translations[0]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.ScriptForm, r.PhoneticForm, meaning)
	}
	tw.Flush()
}

func (a *app) history(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: history needs one url", errUsage)
	}
	if a.recorder == nil {
		return fmt.Errorf("history is disabled")
	}
	exposures, err := a.recorder.Exposures(args[0])
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, x := range exposures {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", x.ScriptForm, x.PhoneticForm, x.OriginalText, x.Meaning, x.OccurrenceCount)
	}
	return tw.Flush()
}
