package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jwinkels/ais/internal/cli/config"
	"github.com/jwinkels/ais/internal/cli/ui"
	"github.com/jwinkels/ais/internal/oracle"
	"github.com/jwinkels/ais/internal/store"
	schemasync "github.com/jwinkels/ais/internal/sync"
)

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	var (
		full    bool
		apex    bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the Oracle schema metadata into the local cache",
		Long: `Crawl the Oracle data dictionary and refresh .ais/cache.yaml.

Incremental by default: owned packages unchanged since the last sync
are skipped. Granted and public packages are always refreshed. The
shared APEX library is crawled separately into apex.yaml when the
one-shot options.load_apex_packages flag is set (or --apex is given);
that pass can take several minutes.

The database password is read from AIS_PASSWORD or prompted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(full, apex, noColor)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "ignore the watermark and re-crawl every owned package")
	cmd.Flags().BoolVar(&apex, "apex", false, "force a refresh of the shared APEX library cache")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runSync(full, apex, noColor bool) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	if cfg.Connection == "" || cfg.Username == "" {
		return fmt.Errorf("connection and username must be set in ais.yml (or AIS_CONNECTION / AIS_USERNAME)")
	}

	password := config.Password()
	if password == "" {
		prompt := &survey.Password{Message: fmt.Sprintf("Password for %s:", cfg.Username)}
		if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	// Ctrl-C cancels cooperatively: the engine stops at the next
	// package boundary and leaves the previous documents untouched.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := ui.NewSyncBar(os.Stdout, ui.SyncBarOptions{NoColor: noColor})

	db, err := oracle.Connect(ctx, cfg.Connection, cfg.Username, password)
	if err != nil {
		bar.Fail(err.Error())
		return err
	}
	defer db.Close()

	st := &store.Store{Dir: cfg.MetadataDir(), LibraryPath: cfg.Paths.ApexCacheFile}
	engine := schemasync.NewEngine(db, st, zap.NewNop())

	result, err := engine.Run(ctx, schemasync.Options{
		PublicPackages: cfg.Options.PublicPackages,
		Full:           full,
		RefreshLibrary: apex || cfg.Options.LoadApexPackages,
		OnProgress: func(p schemasync.Progress) {
			bar.Report(p.Fraction, p.Message)
		},
	})
	if err != nil {
		bar.Fail(fmt.Sprintf("sync failed: %v", err))
		return err
	}

	for _, p := range result.Problems {
		bar.Warn("skipped " + p.String())
	}
	if result.LibraryRefreshed {
		if err := cfg.SetLoadApexPackages(false); err != nil {
			bar.Warn(fmt.Sprintf("could not clear options.load_apex_packages: %v", err))
		}
	}

	bar.Done(fmt.Sprintf("cache updated: %d packages, %d standalone methods, %d items",
		len(result.Cache.Packages), len(result.Cache.Methods), len(result.Cache.Items)))
	return nil
}
