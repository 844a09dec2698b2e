// Command graphcache loads entities from a SQL database through a
// registry and follows relationship paths from them.
//
//	graphcache load Author 1 2 --path books.tags --config graphcache.yaml
//	graphcache schema check library.yaml
//	graphcache schema watch library.yaml
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/syssam/graphcache"
	"github.com/syssam/graphcache/dialect"
	"github.com/syssam/graphcache/dialect/sql"
	"github.com/syssam/graphcache/schema"
	"github.com/syssam/graphcache/store/sqlstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := makeCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "graphcache:", err)
		os.Exit(1)
	}
}

type rootConfig struct {
	configPath string
	verbose    bool
}

func (rc *rootConfig) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if rc.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func makeCommand() *cobra.Command {
	var rc rootConfig
	command := &cobra.Command{
		Use:   "graphcache [command] (flags)",
		Short: "graphcache loads entities and their relationships through a batching cache.",
		Long: `graphcache loads entities and their relationships through a batching cache.

Entities of one type are looked up in batches, and relationships resolved
along a path reuse the entities already loaded. The statistics printed after
each run show how many store interactions the traversal needed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	command.PersistentFlags().StringVar(&rc.configPath, "config", "graphcache.yaml", "path of the YAML configuration file")
	command.PersistentFlags().BoolVarP(&rc.verbose, "verbose", "v", false, "log queries and batches")

	command.AddCommand(makeLoadCommand(&rc))
	command.AddCommand(makeSchemaCommand(&rc))
	return command
}

type loadConfig struct {
	path   string
	format string
	stats  bool
}

func makeLoadCommand(rc *rootConfig) *cobra.Command {
	lc := loadConfig{format: FormatJSON, stats: true}
	cmd := &cobra.Command{
		Use:   "load <type> <id>...",
		Short: "Load entities by identifier and follow a relationship path.",
		Long: `Load entities by identifier and follow a relationship path.

Identifiers may be given as separate arguments or comma-separated. The path
is a dot-separated list of relationship names; the entities reached by its
last step are written to standard output.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rc.configPath)
			if err != nil {
				return err
			}
			logger := rc.logger(cmd.ErrOrStderr())
			g, err := schema.LoadFile(cfg.Schema)
			if err != nil {
				return err
			}
			drv, stats, err := openDriver(cfg, logger, rc.verbose)
			if err != nil {
				return err
			}
			defer drv.Close()
			reg := graphcache.NewRegistry(g, sqlstore.New(drv, g), registryOptions(cfg, logger)...)
			entities, err := traverse(cmd.Context(), reg, args[0], parseIDs(args[1:]), parsePath(lc.path))
			if err != nil {
				return err
			}
			if err := write(cmd.OutOrStdout(), lc.format, entities); err != nil {
				return err
			}
			if lc.stats {
				fmt.Fprintf(cmd.ErrOrStderr(), "store: %s\nsql: %s\n", reg.Stats(), stats.Stats())
				for name, s := range reg.LoaderStats() {
					fmt.Fprintf(cmd.ErrOrStderr(), "loader %s: %s\n", name, s)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lc.path, "path", "p", lc.path, "dot-separated relationship path, e.g. books.tags")
	cmd.Flags().StringVarP(&lc.format, "format", "f", lc.format, "output format: json or msgpack")
	cmd.Flags().BoolVar(&lc.stats, "stats", lc.stats, "print interaction statistics to standard error")
	return cmd
}

func makeSchemaCommand(rc *rootConfig) *cobra.Command {
	command := &cobra.Command{
		Use:   "schema [command]",
		Short: "Validate schema files.",
	}
	command.AddCommand(&cobra.Command{
		Use:   "check <file>",
		Short: "Validate a schema file and list its types.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := schema.LoadFile(args[0])
			if err != nil {
				return err
			}
			describe(cmd.OutOrStdout(), g)
			return nil
		},
	})
	command.AddCommand(&cobra.Command{
		Use:   "watch <file>",
		Short: "Validate a schema file every time it changes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := rc.logger(cmd.ErrOrStderr())
			err := schema.Watch(cmd.Context(), args[0], func(g *schema.Graph, err error) {
				if err != nil {
					logger.Error("schema invalid", "file", args[0], "error", err)
					return
				}
				logger.Info("schema loaded", "file", args[0], "types", len(g.Types()))
			})
			if err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	})
	return command
}

// describe writes one line per type and relationship of g.
func describe(w io.Writer, g *schema.Graph) {
	for _, t := range g.Types() {
		fmt.Fprintf(w, "%s (table %s, id %s)\n", t.Name, t.Table, t.ID)
		for _, r := range t.Relationships {
			fmt.Fprintf(w, "  %s -> %s %s %s via %s\n", r.Name, r.Target, r.Direction, r.Cardinality, r.Field)
		}
	}
}

func openDriver(cfg *Config, logger *slog.Logger, debug bool) (dialect.Driver, *sql.QueryStats, error) {
	threshold := cfg.SlowThreshold
	if threshold == 0 {
		threshold = 100 * time.Millisecond
	}
	drv, stats, err := sql.OpenWithStats(cfg.Dialect, cfg.DSN,
		sql.WithSlowThreshold(threshold),
		sql.WithSlowQueryLog(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		return sql.NewDebugDriver(drv, logger), stats, nil
	}
	return drv, stats, nil
}

func registryOptions(cfg *Config, logger *slog.Logger) []graphcache.Option {
	opts := []graphcache.Option{graphcache.WithLogger(logger)}
	if cfg.Wait > 0 {
		opts = append(opts, graphcache.WithWait(cfg.Wait))
	}
	if cfg.MaxBatch > 0 {
		opts = append(opts, graphcache.WithMaxBatch(cfg.MaxBatch))
	}
	return opts
}
