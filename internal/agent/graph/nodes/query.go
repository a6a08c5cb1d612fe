package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/stockpilot-poc/server/internal/agent/graph/prompts"
	"github.com/stockpilot-poc/server/internal/agent/model"
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// NewQueryHandlerNode creates the terminal node answering questions strictly
// from the inventory snapshot. The extractor's raw text becomes the response.
func NewQueryHandlerNode(cm einomodel.BaseChatModel, modelName string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, cls model.IntentClassification) (*model.TurnResult, error) {
		in, stored := turnContext(ctx)

		queryFailed := func(cause error) (*model.TurnResult, error) {
			logx.Error().Err(cause).Msg("query handler failed")
			response := fmt.Sprintf("Error in query agent: %v", cause)
			return failTurn(stored, model.StageQuery, cause.Error(), response), nil
		}

		systemPrompt, err := prompts.RenderQuerySystem(ctx, in.Inventory, in.History)
		if err != nil {
			return queryFailed(err)
		}

		out, err := cm.Generate(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(in.Message),
		})
		if err != nil {
			return queryFailed(err)
		}
		recordUsage(ctx, NodeQueryHandler, modelName, out)

		answer := strings.TrimSpace(out.Content)
		if answer == "" {
			return queryFailed(fmt.Errorf("empty model response"))
		}

		return &model.TurnResult{
			Response:       answer,
			Classification: stored,
			Outcome:        model.QueryAnswered{Answer: answer},
		}, nil
	})
}
