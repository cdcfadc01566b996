package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jwinkels/ais/internal/lsp"
	"github.com/jwinkels/ais/internal/store"
)

// NewLSPCommand creates the LSP command
func NewLSPCommand() *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the AIS Language Server Protocol (LSP) server.

The server provides PL/SQL completion backed by the synced schema
cache, and exposes the "ais.syncCache" workspace command so editors
can refresh the cache in place.

It communicates via JSON-RPC over stdin/stdout and is typically
started automatically by your editor. Logs go to a rotating file
because stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLSP(logPath)
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "server log file (default <cwd>/.ais/lsp.log)")

	return cmd
}

func runLSP(logPath string) error {
	if logPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		logPath = filepath.Join(cwd, store.DefaultDir, "lsp.log")
	}
	logger := newServerLogger(logPath)
	defer logger.Sync()

	server := lsp.NewServer(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return server.Run(ctx)
}

// newServerLogger builds a zap logger writing to a rotating file.
func newServerLogger(path string) *zap.Logger {
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	})
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		writer,
		zap.InfoLevel,
	)
	return zap.New(core)
}
