package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docrag/internal/domain"
	"docrag/internal/usecase"
)

var (
	queryText          string
	queryTopK          int
	queryJSON          bool
	queryComprehensive bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve a context for a question",
	Long: `Query embeds the question, finds the nearest chunks in the vector
index, and assembles a bounded context from the corpus.

Examples:
  docrag query -q "What was the total implementation cost?"
  docrag query -q "overtime reduction" --comprehensive --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "question (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of neighbors (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryComprehensive, "comprehensive", false, "run keyword-derived query variants and union the results")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	search, closeStore, err := buildSearch(GetConfig(), GetRootDir())
	if err != nil {
		return err
	}
	defer closeStore()

	var ctxResult domain.RetrievalContext
	if queryComprehensive {
		ctxResult, err = search.ComprehensiveSearch(queryText)
	} else {
		ctxResult, err = search.Search(queryText, queryTopK)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if queryJSON {
		out := map[string]any{
			"passages":     ctxResult.Passages,
			"num_passages": len(ctxResult.Passages),
			"total_chars":  ctxResult.TotalChars,
			"truncated":    ctxResult.Truncated,
		}
		if ctxResult.Diagnostic != "" {
			out["diagnostic"] = ctxResult.Diagnostic
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(ctxResult.Passages) == 0 {
		fmt.Println("No passages found.")
		if ctxResult.Diagnostic != "" {
			fmt.Printf("Diagnostic: %s\n", ctxResult.Diagnostic)
		}
		return nil
	}

	fmt.Printf("Assembled %d passages (%d chars", len(ctxResult.Passages), ctxResult.TotalChars)
	if ctxResult.Truncated {
		fmt.Printf(", truncated at budget")
	}
	fmt.Printf(") for: %s\n\n", queryText)
	fmt.Println(usecase.JoinContext(ctxResult))
	return nil
}
