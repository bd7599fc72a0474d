// searchdiag runs one query through the compare endpoint and prints each
// strategy's ranking side by side. Useful when tuning the similarity
// threshold or the fusion weights.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"doc-intelligence-be/internal/dto"

	"github.com/fatih/color"
)

type compareEnvelope struct {
	Code    int                           `json:"code"`
	Message string                        `json:"message"`
	Data    *dto.SearchComparisonResponse `json:"data"`
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:3000/api", "API base URL")
	token := flag.String("token", os.Getenv("API_TOKEN"), "Bearer token")
	limit := flag.Int("limit", 10, "max results per strategy")
	flag.Parse()

	query := flag.Arg(0)
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: searchdiag [flags] <query>")
		os.Exit(1)
	}

	comparison, err := fetchComparison(*baseURL, *token, query, *limit)
	if err != nil {
		color.Red("Request failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("=== Search Comparison: %q ===", comparison.Query)
	printStrategy("SEMANTIC", comparison.SemanticSearch)
	printStrategy("KEYWORD", comparison.KeywordSearch)
	printStrategy("HYBRID", comparison.HybridSearch)
}

func fetchComparison(baseURL, token, query string, limit int) (*dto.SearchComparisonResponse, error) {
	endpoint := baseURL + "/documents/v1/search/compare?query=" + url.QueryEscape(query) +
		"&limit=" + strconv.Itoa(limit)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var envelope compareEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("empty response data")
	}
	return envelope.Data, nil
}

func printStrategy(name string, item *dto.ComparisonStrategyItem) {
	fmt.Println()
	color.Yellow("--- %s ---", name)

	if item == nil {
		color.Red("  no result")
		return
	}
	if item.Error != "" {
		color.Red("  failed: %s", item.Error)
		return
	}

	result := item.Result
	fmt.Printf("  documents found: %d\n", result.DocumentsFound)
	for i, doc := range result.RelevantDocuments {
		fmt.Printf("  %2d. %s [%s]\n", i+1, doc.Title, doc.SearchType)
		fmt.Printf("      semantic=%.4f keyword=%.0f combined=%.4f\n",
			doc.SemanticScore, doc.KeywordScore, doc.CombinedScore)
		if doc.Preview != "" {
			fmt.Printf("      %s\n", doc.Preview)
		}
	}

	if result.AiResponse != "" {
		color.Green("  answer: %s", result.AiResponse)
	}
}
