package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/jgf"
	"github.com/katalvlaran/carta/pipeline"
	"github.com/katalvlaran/carta/selector"
	"github.com/katalvlaran/carta/store"
	"github.com/katalvlaran/carta/synthetic"
)

func newSelectCmd(a *app) *cobra.Command {
	var (
		src          sourceFlags
		selectorPath string
		pipelinePath string
	)
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Print the identities a selector or pipeline picks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			s, err := src.open(a)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, s.Close()) }()

			var vs []*core.Vertex
			switch {
			case pipelinePath != "":
				p, err := loadFile(pipelinePath, pipeline.Load)
				if err != nil {
					return err
				}
				if vs, err = pipeline.Run(cmd.Context(), s.graph, p, pipeline.WithLogger(a.logger)); err != nil {
					return err
				}
			default:
				spec, err := loadFile(selectorPath, pipeline.LoadSelector)
				if err != nil {
					return err
				}
				sel, err := pipeline.BuildSelector(s.graph, spec)
				if err != nil {
					return err
				}
				if vs, err = selector.Select(cmd.Context(), sel); err != nil {
					return err
				}
			}

			for _, v := range vs {
				fmt.Fprintln(cmd.OutOrStdout(), v.ID)
			}
			if s.registry != nil {
				return writeStats(cmd.ErrOrStderr(), s.registry)
			}

			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&selectorPath, "selector", "", "selector document (YAML or JSON)")
	cmd.Flags().StringVar(&pipelinePath, "pipeline", "", "pipeline document; its selector picks from the result")
	cmd.MarkFlagsMutuallyExclusive("selector", "pipeline")
	cmd.MarkFlagsOneRequired("selector", "pipeline")

	return cmd
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		src          sourceFlags
		pipelinePath string
		outPath      string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a pipeline and write the resulting graph as JGF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			s, err := src.open(a)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, s.Close()) }()

			p, err := loadFile(pipelinePath, pipeline.Load)
			if err != nil {
				return err
			}
			out, err := pipeline.Apply(s.graph, p, pipeline.WithLogger(a.logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, cerr := os.Create(outPath)
				if cerr != nil {
					return cerr
				}
				defer func() { err = errors.Join(err, f.Close()) }()
				w = f
			}
			if err := jgf.Encode(cmd.Context(), w, out); err != nil {
				return err
			}
			if s.registry != nil {
				return writeStats(cmd.ErrOrStderr(), s.registry)
			}

			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&pipelinePath, "pipeline", "", "pipeline document (YAML or JSON)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("pipeline")

	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var graphPath, dbPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Persist a JGF document into a badger store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			g, err := readGraph(graphPath)
			if err != nil {
				return err
			}
			cfg := store.DefaultConfig(dbPath)
			cfg.Logger = a.logger
			db, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, db.Close()) }()

			n, err := db.Import(cmd.Context(), g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d vertices into %s\n", n, dbPath)

			return nil
		},
	}
	cmd.Flags().StringVar(&graphPath, "graph", "", "JGF document to read")
	cmd.Flags().StringVar(&dbPath, "db", "", "badger directory")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func newSynthCmd(a *app) *cobra.Command {
	var (
		params = synthetic.DefaultParams()
		depth  int
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Print the descendants of a synthetic graph's root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := synthetic.NewInfiniteDirected(params)
			if err != nil {
				return err
			}
			sel, err := selector.Descendants(g, []core.Identity{g.Root()},
				selector.WithMaxDepth(depth), selector.WithIncludeRoots(true))
			if err != nil {
				return err
			}
			a.logger.Debug("synthetic graph", "graph", g.ID().String(), "root", g.Root().String(), "depth", depth)

			w := cmd.OutOrStdout()
			for v, err := range sel.Vertices(cmd.Context()) {
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", v.ID, v.Label, len(v.OutEdges))
			}

			return nil
		},
	}
	cmd.Flags().Int64Var(&params.Seed, "seed", 0, "generator seed")
	cmd.Flags().IntVar(&depth, "depth", 2, "maximum distance from the root")
	cmd.Flags().Float64Var(&params.ChildProbability, "child-probability", params.ChildProbability, "chance of a first child")
	cmd.Flags().Float64Var(&params.ChildDampener, "child-dampener", params.ChildDampener, "probability multiplier per child")
	cmd.Flags().IntVar(&params.PropertyCount, "properties", params.PropertyCount, "number of property names")

	return cmd
}

// loadFile opens path and decodes it with load.
func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}

	return v, nil
}
