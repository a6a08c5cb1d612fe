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

// NewDeleteHandlerNode creates the terminal node extracting the item to delete
// and removing it from the inventory store. A name with no match surfaces the
// store's distinct not-found message.
func NewDeleteHandlerNode(cm einomodel.BaseChatModel, modelName string, store inventory.Store) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, cls model.IntentClassification) (*model.TurnResult, error) {
		in, stored := turnContext(ctx)

		extractFailed := func(cause error) (*model.TurnResult, error) {
			logx.Error().Err(cause).Msg("delete handler failed")
			response := fmt.Sprintf("Error in delete agent: %v", cause)
			return failTurn(stored, model.StageDelete, cause.Error(), response), nil
		}

		systemPrompt, err := prompts.RenderDeleteSystem(ctx, in.Inventory, in.History)
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
		recordUsage(ctx, NodeDeleteHandler, modelName, out)

		rec, err := parsers.ParseDeleteRecord(out.Content)
		if err != nil {
			return extractFailed(err)
		}

		res, err := store.Delete(ctx, rec.Name)
		if err != nil {
			msg := storeMessage(err)
			return failTurn(stored, model.StageStore, msg, fmt.Sprintf("Error: %s", msg)), nil
		}
		if !res.Success {
			return failTurn(stored, model.StageStore, res.Message, fmt.Sprintf("Error: %s", res.Message)), nil
		}

		logx.Debug().Str("name", rec.Name).Msg("delete turn completed")
		return &model.TurnResult{
			Response:       fmt.Sprintf("Successfully deleted %s from inventory.", rec.Name),
			Classification: stored,
			Outcome:        model.ItemDeleted{Name: rec.Name},
		}, nil
	})
}
