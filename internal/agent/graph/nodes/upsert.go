package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/stockpilot-poc/server/internal/agent/graph/parsers"
	"github.com/stockpilot-poc/server/internal/agent/graph/prompts"
	"github.com/stockpilot-poc/server/internal/agent/model"
	"github.com/stockpilot-poc/server/internal/inventory"
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// NewUpsertHandlerNode creates the terminal node extracting an upsert record
// and writing it to the inventory store. The extractor returns the new
// absolute quantity; the handler performs no delta arithmetic.
func NewUpsertHandlerNode(cm einomodel.BaseChatModel, modelName string, store inventory.Store) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, cls model.IntentClassification) (*model.TurnResult, error) {
		in, stored := turnContext(ctx)

		extractFailed := func(cause error) (*model.TurnResult, error) {
			logx.Error().Err(cause).Msg("upsert handler failed")
			response := fmt.Sprintf("Error in upsert agent: %v", cause)
			return failTurn(stored, model.StageUpsert, cause.Error(), response), nil
		}

		systemPrompt, err := prompts.RenderUpsertSystem(ctx, in.Inventory, in.History)
		if err != nil {
			return extractFailed(err)
		}

		out, err := cm.Generate(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(in.Message),
		})
		if err != nil {
			return extractFailed(err)
		}
		recordUsage(ctx, NodeUpsertHandler, modelName, out)

		rec, err := parsers.ParseUpsertRecord(out.Content)
		if err != nil {
			return extractFailed(err)
		}

		res, err := store.Upsert(ctx, inventory.Item{
			Name:        rec.Name,
			Quantity:    rec.Quantity,
			Description: rec.Description,
		})
		if err != nil {
			msg := storeMessage(err)
			return failTurn(stored, model.StageStore, msg, fmt.Sprintf("Error: %s", msg)), nil
		}
		if !res.Success {
			return failTurn(stored, model.StageStore, res.Message, fmt.Sprintf("Error: %s", res.Message)), nil
		}

		logx.Debug().Str("name", rec.Name).Int64("quantity", rec.Quantity).Msg("upsert turn completed")
		return &model.TurnResult{
			Response:       fmt.Sprintf("Successfully added/updated %s with quantity %d.", rec.Name, rec.Quantity),
			Classification: stored,
			Outcome: model.ItemUpserted{
				Name:        rec.Name,
				Quantity:    rec.Quantity,
				Description: rec.Description,
			},
		}, nil
	})
}
