package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

const searchTimeout = 10 * time.Second

// RestaurantSearch queries an external restaurant API over HTTP.
type RestaurantSearch struct {
	baseURL string
	client  *http.Client
}

func NewRestaurantSearch(baseURL string, client *http.Client) *RestaurantSearch {
	if client == nil {
		client = &http.Client{Timeout: searchTimeout}
	}
	return &RestaurantSearch{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *RestaurantSearch) Name() string { return NameRestaurantSearch }

type restaurantRecord struct {
	Name        string  `json:"name"`
	Cuisine     string  `json:"cuisine"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating"`
	PriceRange  string  `json:"price_range"`
	Description string  `json:"description"`
}

func (s *RestaurantSearch) Invoke(ctx context.Context, input map[string]any) (contract.ToolOutput, error) {
	params := url.Values{}
	if cuisine, ok := input["cuisine"].(string); ok && cuisine != "" {
		params.Set("cuisine", cuisine)
	}
	if location, ok := input["location"].(string); ok && location != "" {
		params.Set("location", location)
	}

	var payload struct {
		Restaurants []restaurantRecord `json:"restaurants"`
	}
	if out, ok := getJSON(ctx, s.client, s.baseURL+"/search", params, &payload,
		"I'm having trouble accessing restaurant information right now.",
		"I'm sorry, I can't search for restaurants at the moment. Please try again later.",
	); !ok {
		return out, nil
	}

	if len(payload.Restaurants) == 0 {
		return contract.ToolOutput{
			Success: true,
			Text:    "I couldn't find any restaurants matching your criteria. Try a different cuisine or location.",
			Data:    map[string]any{"restaurants": payload.Restaurants, "query": params.Encode()},
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d restaurant(s) for you:\n\n", len(payload.Restaurants))
	for i, r := range payload.Restaurants {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "%d. **%s** (%s)\n   %s\n   %.1f/5.0 | %s\n   %s\n\n",
			i+1, r.Name, r.Cuisine, r.Location, r.Rating, r.PriceRange, r.Description)
	}
	if len(payload.Restaurants) > 3 {
		fmt.Fprintf(&b, "...and %d more options available.", len(payload.Restaurants)-3)
	}

	return contract.ToolOutput{
		Success: true,
		Text:    b.String(),
		Data:    map[string]any{"restaurants": payload.Restaurants, "query": params.Encode()},
	}, nil
}

// ProductSearch queries an external product catalog API over HTTP.
type ProductSearch struct {
	baseURL string
	client  *http.Client
}

func NewProductSearch(baseURL string, client *http.Client) *ProductSearch {
	if client == nil {
		client = &http.Client{Timeout: searchTimeout}
	}
	return &ProductSearch{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *ProductSearch) Name() string { return NameProductSearch }

type productRecord struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Availability bool    `json:"availability"`
	Description  string  `json:"description"`
}

func (s *ProductSearch) Invoke(ctx context.Context, input map[string]any) (contract.ToolOutput, error) {
	params := url.Values{}
	if category, ok := input["category"].(string); ok && category != "" {
		params.Set("category", category)
	}
	if term, ok := input["search_term"].(string); ok && term != "" {
		params.Set("search_term", term)
	}

	var payload struct {
		Products []productRecord `json:"products"`
	}
	if out, ok := getJSON(ctx, s.client, s.baseURL+"/search", params, &payload,
		"I'm having trouble accessing product information right now.",
		"I'm sorry, I can't search for products at the moment. Please try again later.",
	); !ok {
		return out, nil
	}

	if len(payload.Products) == 0 {
		return contract.ToolOutput{
			Success: true,
			Text:    "I couldn't find any products matching your criteria. Try a different category or search term.",
			Data:    map[string]any{"products": payload.Products, "query": params.Encode()},
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d product(s) for you:\n\n", len(payload.Products))
	for i, p := range payload.Products {
		if i >= 3 {
			break
		}
		availability := "In Stock"
		if !p.Availability {
			availability = "Out of Stock"
		}
		fmt.Fprintf(&b, "%d. **%s**\n   RM %.2f | %s\n   %s\n   %s\n\n",
			i+1, p.Name, p.Price, availability, p.Category, p.Description)
	}
	if len(payload.Products) > 3 {
		fmt.Fprintf(&b, "...and %d more products available.", len(payload.Products)-3)
	}

	return contract.ToolOutput{
		Success: true,
		Text:    b.String(),
		Data:    map[string]any{"products": payload.Products, "query": params.Encode()},
	}, nil
}

// getJSON performs a GET and decodes the body into target. On any
// failure it returns a failed ToolOutput and ok=false; the status and
// transport messages are tool-specific user-facing apologies.
func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, target any, statusMsg, transportMsg string) (contract.ToolOutput, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return contract.ToolOutput{Success: false, Text: transportMsg, Err: err.Error()}, false
	}

	resp, err := client.Do(req)
	if err != nil {
		return contract.ToolOutput{Success: false, Text: transportMsg, Err: err.Error()}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contract.ToolOutput{
			Success: false,
			Text:    statusMsg,
			Err:     fmt.Sprintf("API returned status %d", resp.StatusCode),
		}, false
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return contract.ToolOutput{Success: false, Text: transportMsg, Err: err.Error()}, false
	}
	return contract.ToolOutput{}, true
}
