// Package tool holds the external capabilities the executor can invoke:
// the calculator, the static outlet directory, the restaurant and
// product search APIs, and the retrieval endpoints.
package tool

import (
	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

const (
	NameCalculator       = "calculator"
	NameOutletDirectory  = "outlet_directory"
	NameRestaurantSearch = "restaurant_search"
	NameProductSearch    = "product_search"
	NameRetrieval        = "retrieval"
)

// Registry maps tool names to implementations.
type Registry map[string]contract.Tool

func (r Registry) Lookup(name string) (contract.Tool, bool) {
	t, ok := r[name]
	return t, ok
}

// Catalog describes every registered capability.
func Catalog() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: NameCalculator,
			Desc: "Evaluate a mathematical expression or a natural-language calculation request.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"expression": {Type: schema.String, Desc: "Expression to evaluate", Required: true},
			}),
		},
		{
			Name: NameOutletDirectory,
			Desc: "Look up outlet details (hours, phone, address) by location.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"location":   {Type: schema.String, Desc: "Outlet location or alias", Required: true},
				"query_type": {Type: schema.String, Desc: "opening_hours, contact, address, or general"},
			}),
		},
		{
			Name: NameRestaurantSearch,
			Desc: "Search restaurants by cuisine and optional location.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"cuisine":  {Type: schema.String, Desc: "Cuisine type", Required: true},
				"location": {Type: schema.String, Desc: "Area to search in"},
			}),
		},
		{
			Name: NameProductSearch,
			Desc: "Search the product catalog by category or free-text term.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"category":    {Type: schema.String, Desc: "Product category"},
				"search_term": {Type: schema.String, Desc: "Free-text search term"},
			}),
		},
		{
			Name: NameRetrieval,
			Desc: "Free-text retrieval over the product or outlet knowledge bases.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "Natural language query", Required: true},
				"kind":  {Type: schema.String, Desc: "product or outlet"},
			}),
		},
	}
}
