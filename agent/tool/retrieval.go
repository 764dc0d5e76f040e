package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

// Retrieval runs free-text lookups against the product and outlet
// knowledge-base endpoints. Queries longer than three words, or ones
// carrying conjunctions, are sent as hybrid searches.
type Retrieval struct {
	productURL string
	outletURL  string
	client     *http.Client
}

func NewRetrieval(productURL, outletURL string, client *http.Client) *Retrieval {
	if client == nil {
		client = &http.Client{Timeout: searchTimeout}
	}
	return &Retrieval{
		productURL: strings.TrimRight(productURL, "/"),
		outletURL:  strings.TrimRight(outletURL, "/"),
		client:     client,
	}
}

func (r *Retrieval) Name() string { return NameRetrieval }

func (r *Retrieval) Invoke(ctx context.Context, input map[string]any) (contract.ToolOutput, error) {
	query, _ := input["query"].(string)
	if strings.TrimSpace(query) == "" {
		return contract.ToolOutput{
			Success: false,
			Text:    "I need a search query to help you. What would you like to know?",
			Err:     "missing query",
		}, nil
	}

	kind, _ := input["kind"].(string)
	switch kind {
	case "", "product":
		return r.searchProducts(ctx, query)
	case "outlet":
		return r.searchOutlets(ctx, query)
	default:
		return contract.ToolOutput{
			Success: false,
			Text:    "I'm not sure what type of information you're looking for. Could you clarify if you need product or outlet information?",
			Err:     "unknown retrieval kind",
		}, nil
	}
}

type retrievalPayload struct {
	Results    []map[string]any `json:"results"`
	Summary    string           `json:"summary"`
	TotalFound int              `json:"total_found"`
}

func (r *Retrieval) searchProducts(ctx context.Context, query string) (contract.ToolOutput, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("search_type", searchType(query))

	var payload retrievalPayload
	if out, ok := getJSON(ctx, r.client, r.productURL, params, &payload,
		"I'm having trouble searching for products right now. Please try again later.",
		"I'm sorry, I can't search for products at the moment. Please try again later.",
	); !ok {
		return out, nil
	}

	if len(payload.Results) == 0 {
		text := payload.Summary
		if text == "" {
			text = fmt.Sprintf("I couldn't find any products matching %q. You might want to try searching for 'tumbler', 'mug', or 'cup' instead.", query)
		}
		return contract.ToolOutput{
			Success: true,
			Text:    text,
			Data:    map[string]any{"query": query, "results": payload.Results},
		}, nil
	}

	text := payload.Summary
	if len(payload.Results) > 3 {
		text += "\n\nI can provide more details about any of these products if you'd like!"
	}
	return contract.ToolOutput{
		Success: true,
		Text:    text,
		Data: map[string]any{
			"query":       query,
			"results":     payload.Results,
			"total_found": payload.TotalFound,
		},
	}, nil
}

func (r *Retrieval) searchOutlets(ctx context.Context, query string) (contract.ToolOutput, error) {
	params := url.Values{}
	params.Set("query", query)

	var payload retrievalPayload
	if out, ok := getJSON(ctx, r.client, r.outletURL, params, &payload,
		"I'm having trouble searching for outlets right now. Please try again later.",
		"I'm sorry, I can't search for outlets at the moment. Please try again later.",
	); !ok {
		return out, nil
	}

	if len(payload.Results) == 0 {
		text := payload.Summary
		if text == "" {
			text = fmt.Sprintf("I couldn't find any outlets matching %q. You might want to try searching for specific cities like 'Kuala Lumpur' or 'Petaling Jaya'.", query)
		}
		return contract.ToolOutput{
			Success: true,
			Text:    text,
			Data:    map[string]any{"query": query, "results": payload.Results},
		}, nil
	}

	return contract.ToolOutput{
		Success: true,
		Text:    payload.Summary,
		Data: map[string]any{
			"query":       query,
			"results":     payload.Results,
			"total_found": payload.TotalFound,
		},
	}, nil
}

func searchType(query string) string {
	lower := strings.ToLower(query)
	if len(strings.Fields(query)) > 3 {
		return "hybrid"
	}
	for _, word := range []string{"and", "or", "but", "with"} {
		for _, f := range strings.Fields(lower) {
			if f == word {
				return "hybrid"
			}
		}
	}
	return "semantic"
}
