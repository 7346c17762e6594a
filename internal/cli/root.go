package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lawbridge/lawbridge/internal/config"
	"github.com/lawbridge/lawbridge/internal/logging"
	"github.com/lawbridge/lawbridge/internal/wire"
)

type ctxKey string

const (
	appKey ctxKey = "app"
	cfgKey ctxKey = "cfg"
)

// standalone marks commands that run on config alone and never open the store.
const standalone = "standalone"

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "lawbridge-cli",
		Short:         "LawBridge CLI: legal chat rendering and PDF export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			// config commands must work even when the file is broken.
			if err := config.Load(cmd.Context(), v); err != nil && !isStandalone(cmd) {
				return err
			}
			applyConfigFlagOverrides(cmd, v, map[string]string{
				"log-level": "log.level",
				"db":        "db",
			})
			ctx := context.WithValue(cmd.Context(), cfgKey, v)
			if isStandalone(cmd) {
				cmd.SetContext(ctx)
				return nil
			}
			if err := config.CheckConfigValidity(v); err != nil {
				return err
			}
			log, err := logging.New(v.GetString("log.level"), v.GetString("log.format"))
			if err != nil {
				return err
			}
			app, err := wire.BuildApp(ctx, v, log)
			if err != nil {
				return err
			}
			log.Debug("app ready", zap.String("command", cmd.CommandPath()), zap.String("config", v.ConfigFileUsed()))
			cmd.SetContext(context.WithValue(ctx, appKey, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app, ok := cmd.Context().Value(appKey).(*wire.App); ok {
				return app.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (toml|yaml|json)")
	cmd.PersistentFlags().String("log-level", "", "override log.level (debug|info|warn|error)")
	cmd.PersistentFlags().String("db", "", "store DSN: mem:// or a sqlite path (default data_dir/lawbridge.db)")

	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func isStandalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[standalone] == "true" {
			return true
		}
	}
	return false
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}

func getConfig(cmd *cobra.Command) *viper.Viper {
	if v, ok := cmd.Context().Value(cfgKey).(*viper.Viper); ok {
		return v
	}
	return viper.New()
}
