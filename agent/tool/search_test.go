package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRestaurantSearchFormatsTopThree(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("cuisine"); got != "Japanese" {
			t.Errorf("unexpected cuisine param: %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"restaurants": []map[string]any{
				{"name": "Sushi Zen", "cuisine": "Japanese", "location": "PJ", "rating": 4.5, "price_range": "$$", "description": "Fresh sushi"},
				{"name": "Ramen Ya", "cuisine": "Japanese", "location": "PJ", "rating": 4.2, "price_range": "$", "description": "Rich broth"},
				{"name": "Izakaya Ko", "cuisine": "Japanese", "location": "KL", "rating": 4.0, "price_range": "$$$", "description": "Small plates"},
				{"name": "Tempura Go", "cuisine": "Japanese", "location": "KL", "rating": 3.9, "price_range": "$$", "description": "Crispy"},
			},
		})
	}))
	defer srv.Close()

	out, err := NewRestaurantSearch(srv.URL, srv.Client()).Invoke(context.Background(), map[string]any{"cuisine": "Japanese"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success: %+v", out)
	}
	if !strings.Contains(out.Text, "I found 4 restaurant(s) for you") {
		t.Fatalf("unexpected header: %s", out.Text)
	}
	if strings.Contains(out.Text, "Tempura Go") {
		t.Fatalf("only the top three should be listed: %s", out.Text)
	}
	if !strings.Contains(out.Text, "...and 1 more options available.") {
		t.Fatalf("missing overflow line: %s", out.Text)
	}
}

func TestRestaurantSearchEmptyResultIsSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"restaurants": []map[string]any{}})
	}))
	defer srv.Close()

	out, err := NewRestaurantSearch(srv.URL, srv.Client()).Invoke(context.Background(), map[string]any{"cuisine": "Thai"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatalf("empty results are still a successful search: %+v", out)
	}
	if !strings.Contains(out.Text, "couldn't find any restaurants") {
		t.Fatalf("unexpected text: %s", out.Text)
	}
}

func TestRestaurantSearchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, err := NewRestaurantSearch(srv.URL, srv.Client()).Invoke(context.Background(), map[string]any{"cuisine": "Thai"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure: %+v", out)
	}
	if !strings.Contains(out.Err, "500") {
		t.Fatalf("error should carry the status: %s", out.Err)
	}
}

func TestRestaurantSearchTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	out, err := NewRestaurantSearch(srv.URL, nil).Invoke(context.Background(), map[string]any{"cuisine": "Thai"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure: %+v", out)
	}
	if out.Err == "" {
		t.Fatal("expected raw transport error")
	}
	if !strings.Contains(out.Text, "I'm sorry") {
		t.Fatalf("expected apology text: %s", out.Text)
	}
}

func TestProductSearchFormatsAvailability(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("category"); got != "Electronics" {
			t.Errorf("unexpected category param: %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]any{
				{"name": "Laptop Pro", "price": 4999.90, "category": "Electronics", "availability": true, "description": "Fast"},
				{"name": "Tablet Air", "price": 1999.00, "category": "Electronics", "availability": false, "description": "Light"},
			},
		})
	}))
	defer srv.Close()

	out, err := NewProductSearch(srv.URL, srv.Client()).Invoke(context.Background(), map[string]any{"category": "Electronics"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success: %+v", out)
	}
	if !strings.Contains(out.Text, "I found 2 product(s) for you") {
		t.Fatalf("unexpected header: %s", out.Text)
	}
	if !strings.Contains(out.Text, "RM 4999.90 | In Stock") {
		t.Fatalf("missing in-stock line: %s", out.Text)
	}
	if !strings.Contains(out.Text, "RM 1999.00 | Out of Stock") {
		t.Fatalf("missing out-of-stock line: %s", out.Text)
	}
}

func TestRetrievalRequiresQuery(t *testing.T) {
	t.Parallel()

	out, err := NewRetrieval("http://localhost:1", "http://localhost:1", nil).Invoke(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Fatalf("expected failure: %+v", out)
	}
	if out.Err != "missing query" {
		t.Fatalf("unexpected error field: %s", out.Err)
	}
}

func TestRetrievalSearchTypeHeuristic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  string
	}{
		{"tumbler", "semantic"},
		{"blue tumbler", "semantic"},
		{"blue tumbler with straw", "hybrid"},
		{"mugs and cups", "hybrid"},
	}

	for _, tc := range cases {
		if got := searchType(tc.query); got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.query, tc.want, got)
		}
	}
}

func TestRetrievalProductSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_type"); got != "hybrid" {
			t.Errorf("unexpected search_type: %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"name": "ZUS Tumbler"}},
			"summary": "We carry one matching tumbler.",
		})
	}))
	defer srv.Close()

	out, err := NewRetrieval(srv.URL, srv.URL, srv.Client()).Invoke(context.Background(), map[string]any{
		"query": "a blue tumbler with straw",
		"kind":  "product",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success {
		t.Fatalf("expected success: %+v", out)
	}
	if out.Text != "We carry one matching tumbler." {
		t.Fatalf("summary should be the response: %s", out.Text)
	}
}

func TestCatalogListsEveryTool(t *testing.T) {
	t.Parallel()

	infos := Catalog()
	if len(infos) != 5 {
		t.Fatalf("expected 5 tool infos, got %d", len(infos))
	}
	names := map[string]bool{}
	for _, info := range infos {
		names[info.Name] = true
	}
	for _, want := range []string{NameCalculator, NameOutletDirectory, NameRestaurantSearch, NameProductSearch, NameRetrieval} {
		if !names[want] {
			t.Fatalf("catalog missing %s", want)
		}
	}
}
