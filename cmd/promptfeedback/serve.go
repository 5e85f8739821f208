package main

import (
	"github.com/spf13/cobra"

	"github.com/guiperry/promptfeedback/config"
	"github.com/guiperry/promptfeedback/server"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.ConfigOption
			if addr != "" {
				opts = append(opts, config.SetListenAddr(addr))
			}
			cfg, err := loadConfig(root, opts...)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, 0)
			if err != nil {
				return err
			}
			return server.New(cfg, svc).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to $PF_LISTEN_ADDR or :8501)")
	return cmd
}
