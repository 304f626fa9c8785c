package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pathnet/internal/config"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report paths whose last point has no continuation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Get()
			if err != nil {
				return err
			}
			if cfg.Source.File == "" {
				return fmt.Errorf("no path file configured, pass --file")
			}

			logger := setupLogging(cfg.LogLevel)
			network, err := buildNetwork(cfg, logger)
			if err != nil {
				return err
			}

			dead, err := network.DisconnectedEnds()
			if err != nil {
				return err
			}
			for _, p := range dead {
				last := p.Last()
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%.3f, %.3f, %.3f)\n", p, last.X, last.Y, last.Z)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d disconnected ends\n", len(dead))
			return nil
		},
	}
}
