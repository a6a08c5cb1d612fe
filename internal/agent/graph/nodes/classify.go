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
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// Node names for the four-state routing workflow.
const (
	NodeClassifier    = "classifier"
	NodeQueryHandler  = "query_handler"
	NodeUpsertHandler = "upsert_handler"
	NodeDeleteHandler = "delete_handler"
	NodeErrorHandler  = "error_handler"
)

// NewClassifierPreHandler captures the turn input in graph local state so the
// terminal handlers can read the message, snapshot and history.
func NewClassifierPreHandler() func(context.Context, model.TurnInput, *model.WorkflowState) (model.TurnInput, error) {
	return func(ctx context.Context, in model.TurnInput, s *model.WorkflowState) (model.TurnInput, error) {
		s.Input = in
		return in, nil
	}
}

// NewClassifierNode creates the intent classification node. It never returns
// an error: a classifier failure leaves the intent unset and records the cause
// in state, so routing falls through to the error handler.
func NewClassifierNode(cm einomodel.BaseChatModel, modelName string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (model.IntentClassification, error) {
		classifyFailed := func(cause error) (model.IntentClassification, error) {
			logx.Error().Err(cause).Msg("intent classification failed")
			_ = compose.ProcessState(ctx, func(_ context.Context, s *model.WorkflowState) error {
				s.ErrorMessage = fmt.Sprintf("Error in task classification: %v", cause)
				return nil
			})
			return model.IntentClassification{}, nil
		}

		systemPrompt, err := prompts.RenderClassifierSystem(ctx)
		if err != nil {
			return classifyFailed(err)
		}

		out, err := cm.Generate(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(in.Message),
		})
		if err != nil {
			return classifyFailed(err)
		}
		recordUsage(ctx, NodeClassifier, modelName, out)

		cls, err := parsers.ParseClassification(out.Content)
		if err != nil {
			return classifyFailed(err)
		}

		logx.Debug().
			Str("intent", string(cls.Intent)).
			Float64("confidence", cls.Confidence).
			Msg("message classified")
		return *cls, nil
	})
}

// NewClassifierPostHandler stores the classification in state for the terminal
// handlers. A zero classification (failed call) is left unset so the error
// handler reports the recorded cause instead.
func NewClassifierPostHandler() func(context.Context, model.IntentClassification, *model.WorkflowState) (model.IntentClassification, error) {
	return func(ctx context.Context, out model.IntentClassification, s *model.WorkflowState) (model.IntentClassification, error) {
		if out.Intent != "" {
			cls := out
			s.Classification = &cls
		}
		return out, nil
	}
}

// NewRouteCondition creates the branch condition dispatching on the classified
// intent. Unset or unknown intents route to the error handler.
func NewRouteCondition() func(context.Context, model.IntentClassification) (string, error) {
	return func(ctx context.Context, cls model.IntentClassification) (string, error) {
		var node string
		switch cls.Intent {
		case model.IntentQuery:
			node = NodeQueryHandler
		case model.IntentUpsert:
			node = NodeUpsertHandler
		case model.IntentDelete:
			node = NodeDeleteHandler
		default:
			node = NodeErrorHandler
		}
		logx.Debug().Str("intent", string(cls.Intent)).Str("node", node).Msg("routing turn")
		return node, nil
	}
}
