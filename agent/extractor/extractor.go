package extractor

import (
	"strings"

	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
)

// Extractor classifies utterances with keyword matching over the
// lowercased text. It is read-only with respect to memory; slot
// writeback happens later in the pipeline.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

var (
	outletKeywords     = []string{"outlet", "store", "branch", "location"}
	restaurantKeywords = []string{"restaurant", "food", "eat", "dining"}
	productKeywords    = []string{"product", "buy", "purchase", "item"}
	calcKeywords       = []string{"calculate", "compute", "math", "+", "-", "*", "/", "add", "subtract"}

	hoursKeywords   = []string{"open", "opening", "hours", "time"}
	contactKeywords = []string{"phone", "contact", "number"}
	addressKeywords = []string{"address", "where"}

	cuisines   = []string{"malaysian", "chinese", "indian", "japanese", "italian", "thai", "american"}
	categories = []string{"electronics", "health", "fitness", "food", "beverage", "furniture", "home", "garden", "fashion"}
)

// locationAliases maps normalized location keys to their spoken forms.
// Order is fixed so that extraction is deterministic.
var locationAliases = []struct {
	key      string
	patterns []string
}{
	{"ss2", []string{"ss2", "ss 2", "sea park"}},
	{"mid_valley", []string{"mid valley", "midvalley", "mid-valley"}},
	{"one_utama", []string{"1 utama", "one utama", "1utama"}},
	{"petaling_jaya", []string{"petaling jaya", "pj", "petaling"}},
	{"kuala_lumpur", []string{"kuala lumpur", "kl", "kuala"}},
}

func (e *Extractor) Extract(utterance string, mem *memoryx.ConversationMemory) contract.Extraction {
	lower := strings.ToLower(utterance)
	entities := map[string]any{}

	switch {
	case containsAny(lower, outletKeywords):
		if loc := extractLocation(lower); loc != "" {
			entities["location"] = loc
		}
		entities["query_type"] = classifyQueryType(lower)
		return contract.Extraction{Intent: contract.IntentOutletInquiry, Entities: entities, Confidence: 0.9}

	case containsAny(lower, restaurantKeywords):
		for _, cuisine := range cuisines {
			if strings.Contains(lower, cuisine) {
				entities["cuisine"] = title(cuisine)
				break
			}
		}
		if loc := extractLocation(lower); loc != "" {
			entities["location"] = loc
		}
		return contract.Extraction{Intent: contract.IntentRestaurantSearch, Entities: entities, Confidence: 0.8}

	case containsAny(lower, productKeywords):
		for _, category := range categories {
			if strings.Contains(lower, category) {
				entities["category"] = title(category)
				break
			}
		}
		return contract.Extraction{Intent: contract.IntentProductSearch, Entities: entities, Confidence: 0.8}

	case containsAny(lower, calcKeywords):
		entities["expression"] = utterance
		return contract.Extraction{Intent: contract.IntentCalculation, Entities: entities, Confidence: 0.9}
	}

	// No fresh primary keyword: an outlet conversation may continue with
	// a bare location or an hours/contact/address question.
	if latest := mem.LatestTurn(); latest != nil && contract.Intent(latest.Intent) == contract.IntentOutletInquiry {
		loc := extractLocation(lower)
		if loc != "" || containsAny(lower, hoursKeywords) || containsAny(lower, contactKeywords) || containsAny(lower, addressKeywords) {
			if loc != "" {
				entities["location"] = loc
			} else if stored, ok := mem.SlotValue("location").(string); ok && stored != "" {
				entities["location"] = stored
			}
			entities["query_type"] = classifyQueryType(lower)
			return contract.Extraction{Intent: contract.IntentOutletInquiry, Entities: entities, Confidence: 0.8}
		}
		return contract.Extraction{Intent: contract.IntentGeneralQuery, Entities: entities, Confidence: 0.6}
	}

	return contract.Extraction{Intent: contract.IntentGeneralQuery, Entities: entities, Confidence: 0.4}
}

func classifyQueryType(lower string) string {
	switch {
	case containsAny(lower, hoursKeywords):
		return "opening_hours"
	case containsAny(lower, contactKeywords):
		return "contact"
	case containsAny(lower, addressKeywords):
		return "address"
	default:
		return "general"
	}
}

func extractLocation(lower string) string {
	for _, alias := range locationAliases {
		for _, pattern := range alias.patterns {
			if strings.Contains(lower, pattern) {
				return alias.key
			}
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
