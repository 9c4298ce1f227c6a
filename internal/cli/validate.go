package cli

import (
	"errors"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	stratumerr "github.com/matzehuels/stratum/pkg/errors"
	stratumio "github.com/matzehuels/stratum/pkg/io"
	"github.com/matzehuels/stratum/pkg/schema"
)

// validateCommand checks the input tables and lists every issue.
func (c *CLI) validateCommand() *cobra.Command {
	var problems, edges, export string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the problems and edges tables",
		Long: `Validate reads the input tables and reports every issue at once: missing or
duplicate ids, ratings outside 1..5, edges without endpoints and negative or
non-numeric weights. It exits non-zero when any issue is found.

With --export, a valid input is also written as a node-link JSON network,
the body POST /v1/analyze accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if problems == "" {
				problems = c.Config.Data.Problems
			}
			if edges == "" {
				edges = c.Config.Data.Edges
			}
			return c.runValidate(problems, edges, export)
		},
	}

	cmd.Flags().StringVarP(&problems, "problems", "p", "", "problems table (default: data.problems from config)")
	cmd.Flags().StringVarP(&edges, "edges", "e", "", "edges table (default: data.edges from config)")
	cmd.Flags().StringVar(&export, "export", "", "write the validated network as JSON to this file")
	return cmd
}

func (c *CLI) runValidate(problemsPath, edgesPath, exportPath string) error {
	pf, err := os.Open(problemsPath)
	if err != nil {
		return stratumerr.Wrap(stratumerr.ErrCodeFileNotFound, err, "open %s", problemsPath)
	}
	defer pf.Close()
	problems, err := stratumio.ReadProblemsCSV(pf)
	if err != nil {
		return err
	}

	var records []schema.EdgeRecord
	ef, err := os.Open(edgesPath)
	switch {
	case os.IsNotExist(err):
		printWarning("%s not found, validating problems only", edgesPath)
	case err != nil:
		return stratumerr.Wrap(stratumerr.ErrCodeInvalidPath, err, "open %s", edgesPath)
	default:
		defer ef.Close()
		if records, err = stratumio.ReadEdgesCSV(ef); err != nil {
			return err
		}
	}

	issues := 0
	for _, err := range []error{schema.ValidateProblems(problems), schema.ValidateEdges(records)} {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			printIssues(verr)
			issues += len(verr.Issues)
		} else if err != nil {
			return err
		}
	}
	if issues > 0 {
		return stratumerr.New(stratumerr.ErrCodeInvalidRecord, "validation failed with %d issues", issues)
	}

	printSuccess("Valid: %s problems, %s edges", StyleNumber.Render(strconv.Itoa(len(problems))), StyleNumber.Render(strconv.Itoa(len(records))))
	c.Logger.Debug("input valid", "problems", problemsPath, "edges", edgesPath)

	if exportPath == "" {
		return nil
	}
	net, err := stratumio.BuildNetwork(problems, records)
	if err != nil {
		return err
	}
	if err := stratumio.ExportJSON(net, exportPath); err != nil {
		return stratumerr.Wrap(stratumerr.ErrCodeInvalidPath, err, "export network")
	}
	printSuccess("Exported network to %s", exportPath)
	return nil
}
