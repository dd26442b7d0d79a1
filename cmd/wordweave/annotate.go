package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/japaniel/wordweave/pkg/dictionary"
	"github.com/japaniel/wordweave/pkg/engine"
	"github.com/japaniel/wordweave/pkg/fetch"
	"github.com/japaniel/wordweave/pkg/history"
	"github.com/japaniel/wordweave/pkg/lists"
	"github.com/japaniel/wordweave/pkg/page"
	"github.com/japaniel/wordweave/pkg/settings"
)

func (a *app) annotate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	listsFlag := fs.String("lists", "", "Comma-separated list ids, overriding the saved selection")
	personalFlag := fs.String("personal", "", "JSON or YAML file of personal words, overriding the saved list")
	reader := fs.Bool("reader", false, "Extract the main article before annotating")
	outDir := fs.String("out", "", "Directory for annotated pages (default stdout for a single page)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	sources := fs.Args()
	if len(sources) == 0 {
		return fmt.Errorf("%w: annotate needs at least one url or file", errUsage)
	}
	if len(sources) > 1 && *outDir == "" {
		return fmt.Errorf("%w: -out is required for several pages", errUsage)
	}

	provider, err := a.annotateProvider(ctx, *listsFlag, *personalFlag)
	if err != nil {
		return err
	}
	manager := a.newManager(provider)
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	job := &annotateJob{
		app:     a,
		manager: manager,
		fetcher: a.newFetcher(),
		reader:  *reader,
		outDir:  *outDir,
	}
	// Lists load on the first page that is not blocked.
	job.loadEngine = sync.OnceValues(func() (*engine.Engine, error) { return manager.Reset(ctx) })

	pool := history.NewWorkerPool(a.cfg.Fetch.Workers, len(sources))
	var (
		errMu  sync.Mutex
		failed int
	)
	pool.OnError = func(err error) {
		errMu.Lock()
		failed++
		errMu.Unlock()
		a.logger.Error("page failed", zap.Error(err))
	}
	pool.Start(ctx)
	for i, src := range sources {
		if err := pool.SubmitCtx(ctx, func(ctx context.Context) error {
			return job.run(ctx, i, src)
		}); err != nil {
			pool.Close()
			return err
		}
	}
	pool.Close()

	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(sources))
	}
	return nil
}

// annotateProvider returns the saved settings unless flags override them.
func (a *app) annotateProvider(ctx context.Context, listIDs, personalFile string) (settings.Provider, error) {
	if listIDs == "" && personalFile == "" {
		return a.store, nil
	}

	var selected []string
	if listIDs != "" {
		for _, id := range strings.Split(listIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				selected = append(selected, id)
			}
		}
	} else {
		saved, err := a.store.SelectedLists(ctx)
		if err != nil {
			return nil, err
		}
		selected = saved
	}

	var personal []dictionary.Record
	if personalFile != "" {
		records, err := dictionary.LoadList(personalFile)
		if err != nil {
			return nil, err
		}
		personal = records
		if !slices.Contains(selected, lists.PersonalID) {
			if len(selected) == 0 {
				selected = []string{lists.DefaultListID}
			}
			selected = append(selected, lists.PersonalID)
		}
	} else {
		saved, err := a.store.PersonalWords(ctx)
		if err != nil {
			return nil, err
		}
		personal = saved
	}
	return settings.NewMemory(selected, personal), nil
}

type annotateJob struct {
	app        *app
	manager    *engine.Manager
	loadEngine func() (*engine.Engine, error)
	fetcher    *fetch.Fetcher
	reader     bool
	outDir     string
}

func (j *annotateJob) run(ctx context.Context, index int, src string) error {
	logger := j.app.logger.With(zap.String("source", src))
	if host := sourceHost(src); host != "" && !j.manager.Allowed(host) {
		logger.Info("host blocked, skipped", zap.String("host", host))
		return nil
	}

	p, err := j.fetcher.Get(ctx, src)
	if err != nil {
		return err
	}
	if j.reader {
		rp, err := fetch.ReaderMode(p)
		if err != nil {
			logger.Warn("reader mode failed, using full page", zap.Error(err))
		} else {
			p = rp
		}
	}

	doc, err := page.Parse(bytes.NewReader(p.HTML))
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}
	if p.URL.Scheme != "file" {
		doc.SetBase(p.URL.String())
	}

	var anns []page.Annotation
	if host := p.Host(); host != "" && !j.manager.Allowed(host) {
		// Redirected onto a blocked host.
		logger.Info("host blocked, page left unchanged", zap.String("host", host))
	} else {
		base, err := j.loadEngine()
		if err != nil {
			return err
		}
		anns = doc.Annotate(base.Fork())
		doc.InjectAssets()
	}

	if j.app.recorder != nil && len(anns) > 0 {
		title := p.Title
		if title == "" {
			title = doc.Title()
		}
		info := history.PageInfo{URL: p.URL.String(), Title: title, SiteName: p.SiteName}
		if err := j.app.recorder.Record(info, anns); err != nil {
			logger.Warn("history not recorded", zap.Error(err))
		}
	}

	out, err := doc.HTML()
	if err != nil {
		return err
	}
	logger.Info("annotated", zap.Int("annotations", len(anns)))

	if j.outDir == "" {
		_, err = fmt.Fprint(j.app.stdout, out)
		return err
	}
	path := filepath.Join(j.outDir, outputName(index, src))
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sourceHost returns the host of an http(s) source, or "" for files.
func sourceHost(src string) string {
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.Hostname()
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// outputName derives a file name for the index-th source.
func outputName(index int, src string) string {
	name := src
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	} else {
		name = filepath.Base(name)
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_.")
	if name == "" {
		name = "page"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return fmt.Sprintf("%02d-%s.html", index+1, name)
}
