// Command pathnet loads a path network and serves queries over it.
//
// Usage:
//
//	pathnet serve --file roads.geojson
//	pathnet check --file roads.wkt
package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pathnet"
	"pathnet/internal/config"
	"pathnet/internal/pathsource"
)

var configDir string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pathnet",
		Short:         "Query a network of polyline paths",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load(configDir)
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing "+config.FileName)
	root.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().String("file", "", "path data file (.geojson, .wkt, .json)")
	root.PersistentFlags().String("format", "", "path data format, inferred from the extension when empty")
	root.PersistentFlags().Float64("radius", 0.2, "junction search radius")

	_ = viper.BindPFlag("logLevel", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("source.file", root.PersistentFlags().Lookup("file"))
	_ = viper.BindPFlag("source.format", root.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("network.autoSearchRadius", root.PersistentFlags().Lookup("radius"))

	root.AddCommand(newServeCmd(), newCheckCmd())
	return root
}

func setupLogging(level string) zerolog.Logger {
	var logLevelActual zerolog.Level
	switch strings.ToUpper(level) {
	case "TRACE":
		logLevelActual = zerolog.TraceLevel
	case "DEBUG":
		logLevelActual = zerolog.DebugLevel
	case "WARN":
		logLevelActual = zerolog.WarnLevel
	case "ERROR":
		logLevelActual = zerolog.ErrorLevel
	default:
		logLevelActual = zerolog.InfoLevel
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(logLevelActual).With().Timestamp().Logger()
}

// buildNetwork creates a network from the configuration and, when a source
// file is configured, builds it.
func buildNetwork(cfg config.Config, logger zerolog.Logger) (*pathnet.Network, error) {
	network := pathnet.NewNetwork(networkOptions(cfg, logger)...)
	if cfg.Source.File == "" {
		return network, nil
	}

	src := pathsource.File{
		Name:    cfg.Source.File,
		Format:  pathsource.Format(cfg.Source.Format),
		Options: cfg.Source.Options,
		Logger:  logger,
	}
	if err := network.RebuildNetwork(src, cfg.Network.RebuildKnots); err != nil {
		return nil, err
	}
	return network, nil
}

func networkOptions(cfg config.Config, logger zerolog.Logger) []pathnet.Option {
	opts := []pathnet.Option{
		pathnet.WithLogger(logger),
		pathnet.WithAutoSearchRadius(cfg.Network.AutoSearchRadius),
		pathnet.WithKnotSpacing(cfg.Network.KnotSpacing),
	}
	if cfg.Network.Seed != 0 {
		opts = append(opts, pathnet.WithRandSource(newSeededSource(cfg.Network.Seed)))
	}
	return opts
}
