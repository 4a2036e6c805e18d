package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/carta/cache"
	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/jgf"
	"github.com/katalvlaran/carta/metrics"
	"github.com/katalvlaran/carta/store"
)

// app holds state shared by every subcommand.
type app struct {
	logLevel string
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "carta",
		Short:         "Select and transform graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(
		newSelectCmd(a),
		newApplyCmd(a),
		newImportCmd(a),
		newSynthCmd(a),
	)

	return root
}

// sourceFlags selects where a command reads its graph from.
type sourceFlags struct {
	graphPath string
	dbPath    string
	cacheSize int
	stats     bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.graphPath, "graph", "", "JGF document to read")
	cmd.Flags().StringVar(&f.dbPath, "db", "", "badger directory to read instead of --graph")
	cmd.Flags().IntVar(&f.cacheSize, "cache-size", 0, "cache up to N vertex lookups (0 disables)")
	cmd.Flags().BoolVar(&f.stats, "stats", false, "print lookup metrics to stderr when done")
	cmd.MarkFlagsMutuallyExclusive("graph", "db")
	cmd.MarkFlagsOneRequired("graph", "db")
}

// source is an opened graph plus what must happen when the command ends.
type source struct {
	graph    core.Graph
	registry *prometheus.Registry
	closers  []func() error
}

func (s *source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}

	return errors.Join(errs...)
}

// open loads the graph and layers the optional cache and instrumentation
// over it.
func (f *sourceFlags) open(a *app) (*source, error) {
	s := &source{}
	switch {
	case f.dbPath != "":
		cfg := store.DefaultConfig(f.dbPath)
		cfg.Logger = a.logger
		db, err := store.Open(cfg)
		if err != nil {
			return nil, err
		}
		s.graph = db
		s.closers = append(s.closers, db.Close)
	default:
		g, err := readGraph(f.graphPath)
		if err != nil {
			return nil, err
		}
		s.graph = g
	}

	if f.cacheSize > 0 {
		c, err := cache.Wrap(s.graph, cache.WithSize(f.cacheSize), cache.WithLogger(a.logger))
		if err != nil {
			return nil, err
		}
		s.graph = c
		s.closers = append(s.closers, func() error {
			st := c.Stats()
			a.logger.Info("cache", "hits", st.Hits, "misses", st.Misses, "evictions", st.Evictions)
			return nil
		})
	}
	if f.stats {
		s.registry = prometheus.NewRegistry()
		m, err := metrics.New(s.registry, "")
		if err != nil {
			return nil, err
		}
		ig, err := metrics.Instrument(s.graph, m)
		if err != nil {
			return nil, err
		}
		s.graph = ig
	}

	return s, nil
}

func readGraph(path string) (*core.MemoryGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := jgf.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return g, nil
}

// writeStats prints every sample in reg as "name{labels} value".
func writeStats(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}
			fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}

	return nil
}
