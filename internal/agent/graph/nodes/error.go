package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/stockpilot-poc/server/internal/agent/model"
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// DefaultErrorCause substitutes when a turn reaches the error handler without
// a recorded failure, i.e. the classifier returned an unroutable intent.
const DefaultErrorCause = "I couldn't understand what you want to do. Please try again with a clearer query about querying, updating, or deleting inventory items"

// NewErrorHandlerNode creates the fallback terminal node. It preserves an
// already-recorded cause and never fails itself.
func NewErrorHandlerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, cls model.IntentClassification) (*model.TurnResult, error) {
		var cause string
		var stored *model.IntentClassification
		_ = compose.ProcessState(ctx, func(_ context.Context, s *model.WorkflowState) error {
			cause = s.ErrorMessage
			stored = s.Classification
			return nil
		})

		stage := model.StageClassify
		if cause == "" {
			cause = DefaultErrorCause
			stage = model.StageRoute
		}

		logx.Warn().Str("stage", string(stage)).Str("cause", cause).Msg("turn routed to error handler")
		return &model.TurnResult{
			Response:       fmt.Sprintf("Sorry, I encountered an issue: %s. Please try again with a clearer query about inventory management.", cause),
			Classification: stored,
			Outcome:        model.TurnFailed{Stage: stage, Cause: cause},
		}, nil
	})
}
