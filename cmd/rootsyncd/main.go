package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cosmossdk.io/log"

	"github.com/wormholelabs-xyz/rootsync/cmd/rootsyncd/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.NewLogger(rootCmd.OutOrStderr()).Error("failure when running rootsyncd", "err", err)
		stop()
		os.Exit(1)
	}
}
