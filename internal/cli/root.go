// Package cli 提供 dialerctl 运维命令
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"retention/dialersync/internal/app/bootstrap"
	"retention/dialersync/internal/app/config"
	"retention/dialersync/internal/app/pkg/logger"
)

// globalOpts 全局参数
type globalOpts struct {
	configPath string
	logLevel   string
}

// NewRootCmd 创建 dialerctl 根命令
func NewRootCmd() *cobra.Command {
	opts := &globalOpts{}

	rootCmd := &cobra.Command{
		Use:   "dialerctl",
		Short: "Operator CLI for the dialer integration layer",
		Long: `dialerctl - operator CLI for the dialer integration layer

Provision agents on the external dialer, repair lead sync state, inspect the
local lead reverse-index and watch lead sync notifications.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr (debug|info|warn|error)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newProvisionCmd(opts),
		newEnsureUserCmd(opts),
		newUnassignCmd(opts),
		newIndexCmd(opts),
		newWatchCmd(opts),
	)

	return rootCmd
}

// Execute 入口；ctx 取消时长时间运行的命令（watch）退出
func Execute(ctx context.Context, stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

// loadApp 加载配置并组装依赖
func (o *globalOpts) loadApp(ctx context.Context) (*bootstrap.App, func(), error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.NewConsoleLogger(o.logLevel)
	if err != nil {
		return nil, nil, err
	}

	app, cleanup, err := bootstrap.InitializeApp(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return app, func() {
		cleanup()
		_ = log.Sync()
	}, nil
}
