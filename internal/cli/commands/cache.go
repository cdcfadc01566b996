package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jwinkels/ais/internal/cli/config"
	"github.com/jwinkels/ais/internal/store"
)

// NewCacheCommand creates the cache command group
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the schema cache documents",
	}
	cmd.AddCommand(newCacheShowCommand())
	cmd.AddCommand(newCacheClearCommand())
	return cmd
}

func newCacheShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the cache documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := projectStore()
			if err != nil {
				return err
			}

			cache := st.Load()
			library := st.LoadLibrary()

			title := color.New(color.FgCyan, color.Bold)

			title.Println("Project cache")
			fmt.Printf("  document:   %s\n", st.CachePath())
			fmt.Printf("  packages:   %d\n", len(cache.Packages))
			fmt.Printf("  methods:    %d\n", len(cache.Methods))
			fmt.Printf("  items:      %d\n", len(cache.Items))
			if cache.LastUpdate != "" {
				fmt.Printf("  last sync:  %s\n", cache.LastUpdate)
			} else {
				fmt.Println("  last sync:  never")
			}

			title.Println("APEX library cache")
			fmt.Printf("  document:   %s\n", st.LibraryCachePath())
			fmt.Printf("  packages:   %d\n", len(library.Packages))
			if library.ApexMajor != 0 {
				fmt.Printf("  apex:       %d.%d\n", library.ApexMajor, library.ApexMinor)
			}
			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache documents",
		Long: `Delete both cache documents. The next sync starts from scratch:
no watermark, so every owned package is re-crawled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := projectStore()
			if err != nil {
				return err
			}
			if err := st.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			color.Green("✓ cache cleared")
			return nil
		},
	}
}

func projectStore() (*store.Store, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	return &store.Store{Dir: cfg.MetadataDir(), LibraryPath: cfg.Paths.ApexCacheFile}, nil
}
