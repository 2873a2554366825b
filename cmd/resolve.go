package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dop251/goja"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chrisuehlinger/elementbind/binding"
	"github.com/chrisuehlinger/elementbind/config"
	"github.com/chrisuehlinger/elementbind/dom"
	"github.com/chrisuehlinger/elementbind/host"
	"github.com/chrisuehlinger/elementbind/js"
	"github.com/chrisuehlinger/elementbind/network"
	"github.com/chrisuehlinger/elementbind/watcher"
)

// registryGlobal is the script global exposing the binding registry.
const registryGlobal = "bindings"

type resolveOptions struct {
	page     string
	scripts  []string
	dataPath string
}

// nodeResult is one bound node in the command output.
type nodeResult struct {
	Node     string        `yaml:"node" json:"node"`
	Bindings *binding.Spec `yaml:"bindings" json:"bindings"`
}

func newResolveCmd(a *app) *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve PAGE.html",
		Short: "Print the resolved bindings of every bound node in a page",
		Long: `Loads PAGE.html, runs its inline scripts and any --script files, installs
the element registry next to the data-bind attribute provider, and prints
each bound node with its resolved bindings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.page = args[0]
			if a.cfg.Watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return a.watch(ctx, cmd.OutOrStdout(), opts)
			}
			return a.resolve(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	d := config.Defaults()
	cmd.Flags().StringArrayVarP(&opts.scripts, "script", "s", nil, "binding script to run after the page scripts (repeatable)")
	cmd.Flags().StringVarP(&opts.dataPath, "data", "d", "", "JSON file with the root data context")
	cmd.Flags().String("order", d.ResolverOrder, "registry placement relative to data-bind (registry-last, registry-first)")
	cmd.Flags().String("attribute", d.Attribute, "markup attribute read by the default provider")
	cmd.Flags().StringP("output", "o", d.Output, "output format (yaml, json)")
	cmd.Flags().BoolP("watch", "w", d.Watch, "re-resolve when the page, scripts or data change")
	cmd.Flags().Duration("debounce", d.Debounce, "delay before re-resolving in watch mode")

	return cmd
}

// resolve runs one resolution pass and writes the result to w. Node
// failures are logged and returned after the output is written.
func (a *app) resolve(ctx context.Context, w io.Writer, opts resolveOptions) error {
	results, resolveErr := a.resolvePage(ctx, opts)
	if resolveErr != nil && !isNodeFailure(resolveErr) {
		return resolveErr
	}
	if err := writeResults(w, a.cfg.Output, results); err != nil {
		return err
	}
	return resolveErr
}

// nodeFailures wraps the joined per-node errors of a traversal.
type nodeFailures struct{ err error }

func (e *nodeFailures) Error() string { return "some nodes failed to resolve: " + e.err.Error() }
func (e *nodeFailures) Unwrap() error { return e.err }

func isNodeFailure(err error) bool {
	var nf *nodeFailures
	return errors.As(err, &nf)
}

// resolvePage loads the page into a fresh document and runtime, runs the
// binding scripts and resolves every node through the installed provider.
func (a *app) resolvePage(ctx context.Context, opts resolveOptions) ([]nodeResult, error) {
	logger := a.logger

	client, err := network.NewClient()
	if err != nil {
		return nil, err
	}
	inputs := network.NewLoader(client)
	page, err := inputs.LoadString(ctx, opts.page)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	doc, err := dom.ParseHTML(page)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", opts.page, err)
	}
	defer dom.ClearMutationCallbacks(doc)

	rt := js.NewRuntime(logger)
	binder := js.NewDOMBinder(rt)
	binder.BindDocument(doc)

	reg := binding.NewRegistry(doc, binding.WithLogger(logger))
	defer reg.Close()
	binder.BindRegistry(registryGlobal, reg)

	// The data-bind provider plays the host's built-in resolver.
	previous := host.SetProvider(js.NewAttributeResolver(binder, a.cfg.Attribute))
	defer host.SetProvider(previous)

	pageRefs := network.NewLoader(client, network.WithBase(opts.page))
	executor := js.NewScriptExecutor(rt, func(src string) (string, error) {
		return pageRefs.LoadString(ctx, src)
	})
	for _, err := range executor.ExecuteScripts(doc) {
		logger.Warn("page script failed", "page", opts.page, "error", err)
	}
	for _, path := range opts.scripts {
		code, err := inputs.LoadString(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("reading script: %w", err)
		}
		if err := executor.ExecuteExternalScript(code, path); err != nil {
			return nil, fmt.Errorf("running %s: %w", path, err)
		}
	}

	data, err := loadData(ctx, rt, inputs, opts.dataPath)
	if err != nil {
		return nil, err
	}

	order, err := host.ParseOrder(a.cfg.ResolverOrder)
	if err != nil {
		return nil, err
	}
	_, restore := host.Install(reg, order)
	defer restore()

	logger.Debug("resolving bindings", "page", opts.page, "order", order, "registered", reg.Len())
	applied, err := host.ApplyBindings(doc.AsNode(), binding.NewContext(data), host.WithLogger(logger))
	if errors.Is(err, host.ErrNoProvider) {
		return nil, err
	}

	results := make([]nodeResult, 0, len(applied))
	for _, ap := range applied {
		results = append(results, nodeResult{Node: ap.Describe(), Bindings: ap.Bindings})
	}
	if err != nil {
		return results, &nodeFailures{err: err}
	}
	return results, nil
}

// loadData parses the data file into a script value so binding functions
// see native objects and arrays.
func loadData(ctx context.Context, rt *js.Runtime, loader *network.Loader, ref string) (goja.Value, error) {
	if ref == "" {
		return nil, nil
	}
	raw, err := loader.LoadString(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}
	value, err := rt.ParseJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing data %s: %w", ref, err)
	}
	return value, nil
}

func writeResults(w io.Writer, format string, results []nodeResult) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
}

// watch resolves once, then again whenever an input file changes, until
// ctx is cancelled.
func (a *app) watch(ctx context.Context, w io.Writer, opts resolveOptions) error {
	var paths []string
	for _, p := range append([]string{opts.page, opts.dataPath, a.configPath}, opts.scripts...) {
		if p == "" || network.IsRemoteURL(p) || network.IsDataURL(p) {
			continue
		}
		paths = append(paths, strings.TrimPrefix(p, "file://"))
	}
	if len(paths) == 0 {
		return errors.New("watch: no local files to watch")
	}

	fw, err := watcher.New(watcher.Config{
		Paths:       paths,
		DebounceDur: a.cfg.Debounce,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = fw.Stop() }()

	changes, err := fw.Start()
	if err != nil {
		return err
	}

	a.runWatched(ctx, w, opts)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			a.logger.Info("input changed, resolving again", "page", opts.page)
			if a.configPath != "" {
				a.reloadConfig()
			}
			a.runWatched(ctx, w, opts)
		}
	}
}

// runWatched runs one pass in watch mode, where failures are logged instead of ending the loop.
func (a *app) runWatched(ctx context.Context, w io.Writer, opts resolveOptions) {
	if strings.EqualFold(a.cfg.Output, "yaml") {
		fmt.Fprintln(w, "---")
	}
	if err := a.resolve(ctx, w, opts); err != nil {
		a.logger.Error("resolve failed", "error", err)
	}
}

// reloadConfig re-reads the config file, keeping the current configuration
// if the new one is invalid.
func (a *app) reloadConfig() {
	if err := a.v.ReadInConfig(); err != nil {
		a.logger.Warn("reloading config failed", "error", err)
		return
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		a.logger.Warn("reloaded config is invalid", "error", err)
		return
	}
	cfg.Watch = true
	a.cfg = cfg
}
