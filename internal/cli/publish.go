package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	stratumerr "github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/publish"
)

// publishOpts holds the flags of the publish command.
type publishOpts struct {
	input      inputOpts
	uri        string // MongoDB connection string
	database   string
	collection string
	dir        string // also write the publication directory
	refresh    bool
}

// publishCommand analyses the input and upserts the report into MongoDB.
func (c *CLI) publishCommand() *cobra.Command {
	var opts publishOpts

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the analysis report to MongoDB",
		Long: `Publish analyses the input tables (reusing a cached report when the
network is unchanged) and upserts the report, keyed by the network hash,
into a MongoDB collection. With --dir the publication directory is written
as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPublish(cmd.Context(), &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVar(&opts.uri, "uri", "", "MongoDB URI (default: mongo.uri or STRATUM_MONGO_URI)")
	cmd.Flags().StringVar(&opts.database, "database", "", "database name (default: mongo.database)")
	cmd.Flags().StringVar(&opts.collection, "collection", "", "collection name (default: mongo.collection)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "also write the publication directory")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached report exists")
	return cmd
}

func (c *CLI) runPublish(ctx context.Context, opts *publishOpts) error {
	uri := firstNonEmpty(opts.uri, c.Config.Mongo.URI)
	if uri == "" {
		return stratumerr.New(stratumerr.ErrCodeInvalidConfig, "no MongoDB URI: set --uri, mongo.uri or STRATUM_MONGO_URI")
	}

	ds, err := c.loadInput(&opts.input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	rep, err := runner.Execute(ctx, ds.Network, c.pipelineOptions(opts.refresh))
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, "Publishing report...")
	spinner.Start()
	mongoSink, err := publish.NewMongoSink(ctx, uri,
		firstNonEmpty(opts.database, c.Config.Mongo.Database),
		firstNonEmpty(opts.collection, c.Config.Mongo.Collection))
	if err != nil {
		spinner.StopWithError("Could not connect to MongoDB")
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoSink.Close(closeCtx); err != nil {
			c.Logger.Warn("mongodb disconnect", "error", err)
		}
	}()

	sinks := publish.Multi{mongoSink}
	if opts.dir != "" {
		sinks = append(sinks, publish.NewDirSink(opts.dir, c.Logger))
	}
	if err := sinks.Publish(ctx, &publish.Bundle{Report: rep, Problems: ds.Problems}); err != nil {
		spinner.StopWithError("Publish failed")
		return err
	}
	spinner.StopWithSuccess("Published %s", StyleNumber.Render(short(rep.GraphHash)))
	printSummary(rep)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
