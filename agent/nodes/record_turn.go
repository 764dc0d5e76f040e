package nodes

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tanpawarit/agentic-dialogue/agent/contract"
	memoryx "github.com/tanpawarit/agentic-dialogue/agent/memory"
	toolx "github.com/tanpawarit/agentic-dialogue/agent/tool"
)

// RecordTurn appends the finished exchange to memory and writes the
// slots learned this turn: every extracted entity, plus markers for
// what a successful tool call touched.
func RecordTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Memory == nil {
		return nil, fmt.Errorf("%w: graph memory is nil", contract.ErrValidation)
	}

	in.Memory.AddTurn(memoryx.Turn{
		ID:          uuid.NewString(),
		UserMessage: in.Text,
		BotResponse: in.Result.Response,
		Intent:      string(in.Extraction.Intent),
		Entities:    in.Extraction.Entities,
		Timestamp:   in.Now,
		Confidence:  in.Extraction.Confidence,
	}, in.Now)

	for key, value := range in.Extraction.Entities {
		in.Memory.UpdateSlot(key, value, 0.9, in.Now)
	}

	if in.Result.Success && in.Result.Data != nil {
		if outlet, ok := in.Result.Data["outlet"]; ok {
			in.Memory.UpdateSlot("last_outlet_accessed", outletName(outlet), 0.9, in.Now)
		}
		if query, ok := in.Result.Data["query"]; ok {
			if _, found := in.Result.Data["restaurants"]; found {
				in.Memory.UpdateSlot("last_restaurant_search", query, 0.8, in.Now)
			}
			if _, found := in.Result.Data["products"]; found {
				in.Memory.UpdateSlot("last_product_search", query, 0.8, in.Now)
			}
		}
	}

	switch in.Decision.Primary.Type {
	case contract.ActionAskClarification, contract.ActionRequestMissingInfo:
		in.Memory.State = memoryx.StateWaitingForInput
	default:
		in.Memory.State = memoryx.StateActive
	}

	return in, nil
}

func outletName(outlet any) any {
	switch v := outlet.(type) {
	case toolx.Outlet:
		return v.Name
	case map[string]any:
		if name, ok := v["name"]; ok {
			return name
		}
	}
	return outlet
}
