package nodes

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/stockpilot-poc/server/internal/agent/model"
	errx "github.com/stockpilot-poc/server/internal/core/error"
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// turnContext reads the turn input and the stored classification from graph
// local state. Handlers call this instead of carrying the input through edges.
func turnContext(ctx context.Context) (model.TurnInput, *model.IntentClassification) {
	var in model.TurnInput
	var cls *model.IntentClassification
	_ = compose.ProcessState(ctx, func(_ context.Context, s *model.WorkflowState) error {
		in = s.Input
		cls = s.Classification
		return nil
	})
	return in, cls
}

// failTurn builds the terminal result for a handler-local failure. Response is
// the full user-facing string; cause is the raw reason.
func failTurn(cls *model.IntentClassification, stage model.FailStage, cause, response string) *model.TurnResult {
	return &model.TurnResult{
		Response:       response,
		Classification: cls,
		Outcome:        model.TurnFailed{Stage: stage, Cause: cause},
	}
}

// storeMessage extracts the user-presentable message from a store error.
func storeMessage(err error) string {
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// recordUsage computes and logs usage cost for a model call and accumulates
// the turn total in graph local state.
func recordUsage(ctx context.Context, node, modelName string, out *schema.Message) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}

	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)

	var turnTotal float64
	_ = compose.ProcessState(ctx, func(_ context.Context, s *model.WorkflowState) error {
		s.TotalCostUSD += totalC
		turnTotal = s.TotalCostUSD
		return nil
	})

	logx.Debug().
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Float64("turn_total_usd", turnTotal).
		Msg("LLM usage")
}
