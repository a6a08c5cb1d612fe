package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/stockpilot-poc/server/internal/agent/graph/nodes"
	"github.com/stockpilot-poc/server/internal/agent/graph/observers"
	"github.com/stockpilot-poc/server/internal/agent/model"
	"github.com/stockpilot-poc/server/internal/inventory"
	logx "github.com/stockpilot-poc/server/pkg/logger"
)

// Runner executes the compiled workflow for one turn. The result is total:
// every code path, failures included, yields a non-empty user-facing response.
type Runner interface {
	RunTurn(ctx context.Context, in model.TurnInput) *model.TurnResult
}

// Config holds everything needed to compose the full turn workflow end-to-end.
// This is a convenience layer over GraphConfig that also constructs ChatModels.
type Config struct {
	APIKey          string
	BaseURL         string
	ClassifierModel model.ClassifierModelConfig
	ExtractorModel  model.ExtractorModelConfig
	Store           inventory.Store
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels *nodes.ChatModels
	Store      inventory.Store
}

// GraphBuilder handles the construction of the turn workflow graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.TurnInput, *model.TurnResult]
}

type turnRunner struct {
	runnable compose.Runnable[model.TurnInput, *model.TurnResult]
}

func (r *turnRunner) RunTurn(ctx context.Context, in model.TurnInput) *model.TurnResult {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err == nil && out != nil && out.Response != "" {
		return out
	}

	// Engine-level faults must still produce a user-facing response.
	cause := "workflow produced no response"
	if err != nil {
		cause = fmt.Sprintf("workflow execution failed: %v", err)
		logx.Error().Err(err).Msg("graph invocation failed")
	} else {
		logx.Error().Msg("graph invocation returned an empty result")
	}
	return &model.TurnResult{
		Response: fmt.Sprintf("Sorry, I encountered an issue: %s. Please try again with a clearer query about inventory management.", cause),
		Outcome:  model.TurnFailed{Stage: model.StageEngine, Cause: cause},
	}
}

// BuildTurnGraph composes the chat models, builds the graph, and returns a
// Runner. The workflow definition is immutable after compilation; each
// RunTurn gets its own freshly constructed WorkflowState.
func BuildTurnGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("inventory store is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		ClassifierConfig: &cfg.ClassifierModel,
		ExtractorConfig:  &cfg.ExtractorModel,
	})
	if err != nil {
		return nil, err
	}

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels: cms,
		Store:      cfg.Store,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Turn workflow graph built successfully")
	return &turnRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled turn workflow graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Classifier == nil || config.ChatModels.Extractor == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("inventory store is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, *model.TurnResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.WorkflowState {
				return &model.WorkflowState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranch(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds the classifier and the four terminal nodes to the graph.
func (b *GraphBuilder) addNodes() {
	cms := b.config.ChatModels

	b.graph.AddLambdaNode(nodes.NodeClassifier,
		nodes.NewClassifierNode(cms.Classifier, cms.ClassifierModelName),
		compose.WithStatePreHandler(nodes.NewClassifierPreHandler()),
		compose.WithStatePostHandler(nodes.NewClassifierPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeQueryHandler,
		nodes.NewQueryHandlerNode(cms.Extractor, cms.ExtractorModelName),
	)

	b.graph.AddLambdaNode(nodes.NodeUpsertHandler,
		nodes.NewUpsertHandlerNode(cms.Extractor, cms.ExtractorModelName, b.config.Store),
	)

	b.graph.AddLambdaNode(nodes.NodeDeleteHandler,
		nodes.NewDeleteHandlerNode(cms.Extractor, cms.ExtractorModelName, b.config.Store),
	)

	b.graph.AddLambdaNode(nodes.NodeErrorHandler,
		nodes.NewErrorHandlerNode(),
	)
}

// addEdges creates the unconditional flow connections.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeClassifier},
		{nodes.NodeQueryHandler, compose.END},
		{nodes.NodeUpsertHandler, compose.END},
		{nodes.NodeDeleteHandler, compose.END},
		{nodes.NodeErrorHandler, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranch creates the intent dispatch branch. Exactly one terminal node runs
// per turn; there is no fan-out and no re-entry.
func (b *GraphBuilder) addBranch() error {
	routeBranch := compose.NewGraphBranch(
		nodes.NewRouteCondition(),
		map[string]bool{
			nodes.NodeQueryHandler:  true,
			nodes.NodeUpsertHandler: true,
			nodes.NodeDeleteHandler: true,
			nodes.NodeErrorHandler:  true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeClassifier, routeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding intent dispatch branch")
		return fmt.Errorf("error adding intent dispatch branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	// The workflow is acyclic with at most two steps past START; a small cap
	// still guards against composition mistakes.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(5))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
