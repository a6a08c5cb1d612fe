package model

// WorkflowState stores per-invocation state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState
//     and constructed fresh for every Invoke; no state is shared across turns.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//     Eino serializes access within these handlers, so no mutex is required.
type WorkflowState struct {
	Input          TurnInput             // captured by the classifier pre-handler
	Classification *IntentClassification // set by the classifier node on success
	ErrorMessage   string                // set by the node that failed, read by the error handler

	// Accumulated total LLM cost (USD) across model invocations for this turn.
	TotalCostUSD float64
}
