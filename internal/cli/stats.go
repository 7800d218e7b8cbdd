package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docrag/config"
	"docrag/internal/adapter/corpus"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath := config.CorpusDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no corpus found. Run 'docrag ingest' first")
	}

	store, err := corpus.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer store.Close()

	stats, err := store.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Corpus statistics:\n")
	fmt.Printf("  Documents:    %d\n", stats.TotalDocs)
	fmt.Printf("  Chunks:       %d\n", stats.TotalChunks)
	fmt.Printf("  Table chunks: %d\n", stats.TableChunks)
	fmt.Printf("  Avg length:   %.0f chars\n", stats.AvgChunkLen)
	return nil
}
