package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
)

// Outlet is one physical branch in the static directory.
type Outlet struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Address      string   `json:"address"`
	OpeningHours string   `json:"opening_hours"`
	Phone        string   `json:"phone"`
	Services     []string `json:"services"`
}

// OutletDirectory answers outlet lookups from an in-process table.
type OutletDirectory struct {
	outlets map[string]Outlet
}

func NewOutletDirectory() *OutletDirectory {
	return &OutletDirectory{outlets: defaultOutlets()}
}

func defaultOutlets() map[string]Outlet {
	return map[string]Outlet{
		"ss2": {
			Name:         "SS2 Outlet",
			Location:     "SS2, Petaling Jaya",
			Address:      "No. 123, Jalan SS2/24, SS2, 47300 Petaling Jaya, Selangor",
			OpeningHours: "9:00 AM - 9:00 PM",
			Phone:        "+603-1234-5678",
			Services:     []string{"Dine-in", "Takeaway", "Delivery"},
		},
		"mid_valley": {
			Name:         "Mid Valley Outlet",
			Location:     "Mid Valley, Kuala Lumpur",
			Address:      "L2-034, Mid Valley Megamall, Kuala Lumpur",
			OpeningHours: "10:00 AM - 10:00 PM",
			Phone:        "+603-8765-4321",
			Services:     []string{"Dine-in", "Takeaway"},
		},
		"one_utama": {
			Name:         "1 Utama Outlet",
			Location:     "1 Utama, Petaling Jaya",
			Address:      "LG-234, 1 Utama Shopping Centre, Petaling Jaya",
			OpeningHours: "10:00 AM - 10:00 PM",
			Phone:        "+603-5555-1234",
			Services:     []string{"Dine-in", "Takeaway", "Delivery"},
		},
	}
}

func (d *OutletDirectory) Name() string { return NameOutletDirectory }

func (d *OutletDirectory) Invoke(_ context.Context, input map[string]any) (contract.ToolOutput, error) {
	location, _ := input["location"].(string)
	queryType, _ := input["query_type"].(string)
	if queryType == "" {
		queryType = "general"
	}

	key := mapLocationToOutlet(location)
	outlet, ok := d.outlets[key]
	if key == "" || !ok {
		return contract.ToolOutput{
			Success: false,
			Text: fmt.Sprintf(
				"I'm sorry, I don't have information about an outlet in %s. We have outlets in Petaling Jaya (SS2), Mid Valley (KL), and 1 Utama (PJ).",
				location,
			),
			Err: "outlet not found",
		}, nil
	}

	var text string
	switch queryType {
	case "opening_hours":
		text = fmt.Sprintf("The %s opens at %s.", outlet.Name, outlet.OpeningHours)
	case "contact":
		text = fmt.Sprintf("You can contact the %s at %s.", outlet.Name, outlet.Phone)
	case "address":
		text = fmt.Sprintf("The %s is located at %s.", outlet.Name, outlet.Address)
	default:
		text = fmt.Sprintf(
			"Yes! The %s is located at %s. Operating hours: %s. Phone: %s.",
			outlet.Name, outlet.Address, outlet.OpeningHours, outlet.Phone,
		)
	}

	return contract.ToolOutput{
		Success: true,
		Text:    text,
		Data:    map[string]any{"outlet": outlet, "query_type": queryType},
	}, nil
}

// mapLocationToOutlet resolves aliases to directory keys. Bare city
// names pick that city's default outlet.
func mapLocationToOutlet(location string) string {
	switch strings.ToLower(location) {
	case "ss2", "ss 2":
		return "ss2"
	case "mid_valley", "midvalley", "mid-valley":
		return "mid_valley"
	case "one_utama", "1_utama", "1utama":
		return "one_utama"
	case "petaling_jaya", "pj", "petaling":
		return "ss2"
	case "kuala_lumpur", "kl", "kuala":
		return "mid_valley"
	}
	return ""
}
