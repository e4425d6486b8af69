package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "uvi: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "uvi",
		Short: "Unsigned varint and length-prefixed frame tool",
		Long: `uvi encodes and decodes unsigned LEB128 varints, frames and
unframes varint length-prefixed payloads, and moves frames over QUIC or
HTTP/3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug events to stderr")

	rootCmd.AddCommand(
		encodeCmd(),
		decodeCmd(),
		frameCmd(),
		unframeCmd(),
		serveCmd(),
		sendCmd(),
	)
	return rootCmd
}

func logger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
