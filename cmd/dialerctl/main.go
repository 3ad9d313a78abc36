// Command dialerctl 外呼平台集成层运维命令
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"retention/dialersync/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
