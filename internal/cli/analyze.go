package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/core/ism"
	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/triage"
	stratumio "github.com/matzehuels/stratum/pkg/io"
	"github.com/matzehuels/stratum/pkg/publish"
	"github.com/matzehuels/stratum/pkg/schema"
)

// inputOpts are the flags every command reading the input tables shares.
type inputOpts struct {
	problems   string // problems table, or a .json node-link document
	edges      string // edges table
	noValidate bool   // skip schema validation
}

func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.problems, "problems", "p", "", "problems table or JSON network (default: data.problems from config)")
	cmd.Flags().StringVarP(&o.edges, "edges", "e", "", "edges table (default: data.edges from config)")
	cmd.Flags().BoolVar(&o.noValidate, "no-validate", false, "skip input validation")
}

// loadInput reads the input tables named by the flags or the config and
// validates them unless asked not to.
func (c *CLI) loadInput(o *inputOpts) (*stratumio.Dataset, error) {
	problems, edges := o.problems, o.edges
	if problems == "" {
		problems = c.Config.Data.Problems
	}
	if edges == "" {
		edges = c.Config.Data.Edges
	}
	c.Logger.Debug("loading input", "problems", problems, "edges", edges)

	ds, err := stratumio.LoadNetwork(problems, edges)
	if err != nil {
		return nil, err
	}
	if !o.noValidate {
		if err := validateDataset(ds); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// validateDataset runs both table validators and prints every issue found.
func validateDataset(ds *stratumio.Dataset) error {
	var failed error
	for _, err := range []error{schema.ValidateProblems(ds.Problems), schema.ValidateEdges(ds.Edges)} {
		if err == nil {
			continue
		}
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			printIssues(verr)
		}
		if failed == nil {
			failed = err
		}
	}
	return failed
}

// writeOutput runs write against the -o file, or stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// =============================================================================
// analyze
// =============================================================================

// analyzeOpts holds the flags of the analyze command.
type analyzeOpts struct {
	input   inputOpts
	output  string // publication directory
	mode    string // cycle-aware or strict
	top     int    // top drivers table size
	noCache bool   // bypass the cache entirely
	refresh bool   // recompute but still store
}

// analyzeCommand runs the full pipeline and publishes the tables.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Level, score and route the problem network and publish the tables",
		Long: `Analyze reads the problems and edges tables, partitions the problems into
ISM levels, computes MICMAC influence and dependence, routes every problem
by impact and uncertainty, and writes the result tables to the publication
directory together with a copy of the input tables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "publication directory (default: output.dir from config)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "leveling mode: cycle-aware (default), strict")
	cmd.Flags().IntVar(&opts.top, "top", 0, "number of top drivers to publish (default: output.top_drivers)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached report exists")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, opts *analyzeOpts) error {
	prog := newProgress(c.Logger)

	ds, err := c.loadInput(&opts.input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(opts.refresh)
	if opts.mode != "" {
		popts.Mode = opts.mode
	}
	if opts.top != 0 {
		popts.TopDrivers = opts.top
	}

	spinner := newSpinner(ctx, "Analysing network...")
	spinner.Start()
	rep, err := runner.Execute(ctx, ds.Network, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	dir := opts.output
	if dir == "" {
		dir = c.Config.Output.Dir
	}
	bundle := &publish.Bundle{Report: rep, Problems: ds.Problems}
	if p := opts.input.problems; p != "" {
		bundle.InputDir = filepath.Dir(p)
	} else {
		bundle.InputDir = filepath.Dir(c.Config.Data.Problems)
	}
	if err := publish.NewDirSink(dir, c.Logger).Publish(ctx, bundle); err != nil {
		return err
	}

	printSuccess("Analysed %s", StyleNumber.Render(short(rep.RunID)))
	printSummary(rep)
	for _, name := range []string{publish.FileLevels, publish.FileScores, publish.FileDrivers, publish.FileEnriched, publish.FileReport} {
		printFile(filepath.Join(dir, name))
	}
	prog.done("analysis complete", "run_id", rep.RunID, "cached", rep.CacheInfo.Hit)
	return nil
}

// short trims an identifier for display.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// ism / micmac / triage
// =============================================================================

// ismCommand prints the level table.
func (c *CLI) ismCommand() *cobra.Command {
	var (
		input  inputOpts
		output string
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "ism",
		Short: "Partition problems into hierarchy levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = c.Config.Analysis.Mode
			}
			m, ok := ism.ParseMode(mode)
			if !ok {
				return fmt.Errorf("invalid mode: %q (must be one of: cycle-aware, strict)", mode)
			}
			ds, err := c.loadInput(&input)
			if err != nil {
				return err
			}
			res := ism.Analyze(ds.Network, m)
			if res.Fallback {
				c.Logger.Warn("levels did not fully separate", "last_level", res.LevelCount)
			}
			c.Logger.Debug("levels computed", "nodes", len(res.Rows), "levels", res.LevelCount, "mode", m)
			return writeOutput(cmd, output, func(w io.Writer) error {
				return stratumio.WriteLevelsCSV(w, res.Rows)
			})
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&mode, "mode", "", "leveling mode: cycle-aware (default), strict")
	return cmd
}

// micmacCommand prints the structural score table.
func (c *CLI) micmacCommand() *cobra.Command {
	var (
		input  inputOpts
		output string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "micmac",
		Short: "Score influence and dependence and classify problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.loadInput(&input)
			if err != nil {
				return err
			}
			scores := micmac.Analyze(ds.Network)
			if top > 0 {
				scores = micmac.TopDrivers(scores, top)
			}
			return writeOutput(cmd, output, func(w io.Writer) error {
				return stratumio.WriteScoresCSV(w, scores)
			})
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&top, "top", 0, "only print the N strongest drivers")
	return cmd
}

// triageCommand prints the problems table with a route column.
func (c *CLI) triageCommand() *cobra.Command {
	var (
		input       inputOpts
		output      string
		impact      int
		uncertainty int
	)

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Route problems by impact and uncertainty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			th := c.Config.Triage
			if impact > 0 {
				th.Impact = impact
			}
			if uncertainty > 0 {
				th.Uncertainty = uncertainty
			}
			ds, err := c.loadInput(&input)
			if err != nil {
				return err
			}
			routes := make([]triage.Route, len(ds.Problems))
			for i := range ds.Problems {
				a := ds.Problems[i].Assessment()
				routes[i] = triage.Assign(a.Impact, a.Uncertainty, th)
			}
			c.Logger.Debug("routed problems", "counts", countRoutes(routes))
			return writeOutput(cmd, output, func(w io.Writer) error {
				return stratumio.WriteEnrichedCSV(w, ds.Problems, routes)
			})
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&impact, "impact", 0, fmt.Sprintf("impact threshold (default: triage.impact, %d)", triage.DefaultThreshold))
	cmd.Flags().IntVar(&uncertainty, "uncertainty", 0, fmt.Sprintf("uncertainty threshold (default: triage.uncertainty, %d)", triage.DefaultThreshold))
	return cmd
}

func countRoutes(routes []triage.Route) map[triage.Route]int {
	out := make(map[triage.Route]int, 4)
	for _, r := range routes {
		out[r]++
	}
	return out
}
