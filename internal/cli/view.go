package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	stratumerr "github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/pipeline"
	"github.com/matzehuels/stratum/pkg/publish"
)

// viewCommand opens a published report in the interactive browser.
func (c *CLI) viewCommand() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "view [report.json]",
		Short: "Browse a published report",
		Long: `View opens report.json in an interactive table browser with tabs for the
level, score and route tables. Without an argument it reads the report in
the configured publication directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(c.Config.Output.Dir, publish.FileReport)
			if len(args) == 1 {
				path = args[0]
			}
			rep, err := readReport(path)
			if err != nil {
				return err
			}
			if summary {
				printSuccess("Report %s", StyleNumber.Render(short(rep.RunID)))
				printSummary(rep)
				return nil
			}
			p := tea.NewProgram(NewReportModel(rep), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print the summary instead of opening the browser")
	return cmd
}

// readReport loads a report.json written by the analyze command.
func readReport(path string) (*pipeline.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, stratumerr.Wrap(stratumerr.ErrCodeFileNotFound, err, "no report at %s (run stratum analyze first)", path)
		}
		return nil, stratumerr.Wrap(stratumerr.ErrCodeInvalidPath, err, "read %s", path)
	}
	var rep pipeline.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, stratumerr.Wrap(stratumerr.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return &rep, nil
}
