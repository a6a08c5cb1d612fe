package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/stockpilot-poc/server/internal/agent/graph/nodes"
	"github.com/stockpilot-poc/server/internal/agent/model"
	errx "github.com/stockpilot-poc/server/internal/core/error"
	"github.com/stockpilot-poc/server/internal/inventory"
)

type fakeChatModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

// fakeStore is an in-memory Store matching the Postgres store's messages.
type fakeStore struct {
	items     []inventory.Item
	upsertErr error
	deleteErr error
}

func (s *fakeStore) List(ctx context.Context) ([]inventory.Item, error) {
	out := make([]inventory.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeStore) Upsert(ctx context.Context, item inventory.Item) (inventory.Result, error) {
	if s.upsertErr != nil {
		return inventory.Result{}, s.upsertErr
	}
	for i, it := range s.items {
		if it.Name == item.Name {
			s.items[i].Quantity = item.Quantity
			if item.Description != "" {
				s.items[i].Description = item.Description
			}
			return inventory.Result{Success: true, Items: []inventory.Item{s.items[i]}}, nil
		}
	}
	s.items = append(s.items, item)
	return inventory.Result{Success: true, Items: []inventory.Item{item}}, nil
}

func (s *fakeStore) Delete(ctx context.Context, name string) (inventory.Result, error) {
	if s.deleteErr != nil {
		return inventory.Result{}, s.deleteErr
	}
	for i, it := range s.items {
		if it.Name == name {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return inventory.Result{Success: true}, nil
		}
	}
	return inventory.Result{
		Success: false,
		Message: fmt.Sprintf("Item '%s' not found in inventory", name),
	}, nil
}

func buildTestRunner(t *testing.T, classifier, extractor einomodel.BaseChatModel, store inventory.Store) Runner {
	t.Helper()

	runnable, err := BuildGraph(context.Background(), &GraphConfig{
		ChatModels: &nodes.ChatModels{
			Classifier:          classifier,
			Extractor:           extractor,
			ClassifierModelName: "fake-classifier",
			ExtractorModelName:  "fake-extractor",
		},
		Store: store,
	})
	if err != nil {
		t.Fatalf("BuildGraph() error = %v", err)
	}
	return &turnRunner{runnable: runnable}
}

func classification(intent string) *schema.Message {
	return &schema.Message{
		Content: fmt.Sprintf(`{"intent": %q, "confidence": 0.95, "reasoning": "test"}`, intent),
	}
}

func TestRunTurnQueryRoute(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("query")}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: "We currently have 10 laptops in stock."},
	}}
	runner := buildTestRunner(t, classifier, extractor, &fakeStore{
		items: []inventory.Item{{Name: "Laptop", Quantity: 10}},
	})

	res := runner.RunTurn(context.Background(), model.TurnInput{
		Message:   "How many laptops do we have?",
		Inventory: []inventory.Item{{Name: "Laptop", Quantity: 10}},
	})

	if res.Failed() {
		t.Fatalf("turn failed: %#v", res.Outcome)
	}
	if res.Response != "We currently have 10 laptops in stock." {
		t.Errorf("Response = %q", res.Response)
	}
	answered, ok := res.Outcome.(model.QueryAnswered)
	if !ok {
		t.Fatalf("Outcome = %T, want QueryAnswered", res.Outcome)
	}
	if answered.Answer != res.Response {
		t.Errorf("Answer = %q, want %q", answered.Answer, res.Response)
	}
	if res.Classification == nil || res.Classification.Intent != model.IntentQuery {
		t.Errorf("Classification = %#v", res.Classification)
	}
}

func TestRunTurnUpsertRoute(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("upsert")}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: `{"item_name": "Monitor", "quantity": 5, "description": null}`},
	}}
	store := &fakeStore{}
	runner := buildTestRunner(t, classifier, extractor, store)

	res := runner.RunTurn(context.Background(), model.TurnInput{
		Message: "Add 5 new monitors to inventory",
	})

	if res.Response != "Successfully added/updated Monitor with quantity 5." {
		t.Errorf("Response = %q", res.Response)
	}
	upserted, ok := res.Outcome.(model.ItemUpserted)
	if !ok {
		t.Fatalf("Outcome = %T, want ItemUpserted", res.Outcome)
	}
	if upserted.Name != "Monitor" || upserted.Quantity != 5 {
		t.Errorf("ItemUpserted = %#v", upserted)
	}
	if len(store.items) != 1 || store.items[0].Name != "Monitor" || store.items[0].Quantity != 5 {
		t.Errorf("store state = %#v", store.items)
	}
}

func TestRunTurnUpsertOverwritesQuantity(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("upsert")}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: `{"item_name": "Laptop", "quantity": 15, "description": null}`},
	}}
	store := &fakeStore{items: []inventory.Item{{Name: "Laptop", Quantity: 10, Description: "work machines"}}}
	runner := buildTestRunner(t, classifier, extractor, store)

	res := runner.RunTurn(context.Background(), model.TurnInput{
		Message:   "Add 5 more laptops",
		Inventory: store.items,
	})

	if res.Response != "Successfully added/updated Laptop with quantity 15." {
		t.Errorf("Response = %q", res.Response)
	}
	if store.items[0].Quantity != 15 {
		t.Errorf("quantity = %d, want 15", store.items[0].Quantity)
	}
	if store.items[0].Description != "work machines" {
		t.Errorf("description overwritten: %q", store.items[0].Description)
	}
}

func TestRunTurnDeleteRoute(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("delete")}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: `{"item_name": "Laptop"}`},
	}}
	store := &fakeStore{items: []inventory.Item{{Name: "Laptop", Quantity: 10}}}
	runner := buildTestRunner(t, classifier, extractor, store)

	res := runner.RunTurn(context.Background(), model.TurnInput{
		Message:   "Remove all laptops",
		Inventory: store.items,
	})

	if res.Response != "Successfully deleted Laptop from inventory." {
		t.Errorf("Response = %q", res.Response)
	}
	if _, ok := res.Outcome.(model.ItemDeleted); !ok {
		t.Fatalf("Outcome = %T, want ItemDeleted", res.Outcome)
	}
	if len(store.items) != 0 {
		t.Errorf("store state = %#v", store.items)
	}
}

func TestRunTurnDeleteMissingItem(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("delete")}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: `{"item_name": "Laptop"}`},
	}}
	runner := buildTestRunner(t, classifier, extractor, &fakeStore{})

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "Delete laptops"})

	if res.Response != "Error: Item 'Laptop' not found in inventory" {
		t.Errorf("Response = %q", res.Response)
	}
	failed, ok := res.Outcome.(model.TurnFailed)
	if !ok {
		t.Fatalf("Outcome = %T, want TurnFailed", res.Outcome)
	}
	if failed.Stage != model.StageStore {
		t.Errorf("Stage = %q, want %q", failed.Stage, model.StageStore)
	}
}

func TestRunTurnUnroutableIntent(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("greeting")}}
	runner := buildTestRunner(t, classifier, &fakeChatModel{}, &fakeStore{})

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "hello there"})

	want := fmt.Sprintf("Sorry, I encountered an issue: %s. Please try again with a clearer query about inventory management.", nodes.DefaultErrorCause)
	if res.Response != want {
		t.Errorf("Response = %q, want %q", res.Response, want)
	}
	failed, ok := res.Outcome.(model.TurnFailed)
	if !ok {
		t.Fatalf("Outcome = %T, want TurnFailed", res.Outcome)
	}
	if failed.Stage != model.StageRoute {
		t.Errorf("Stage = %q, want %q", failed.Stage, model.StageRoute)
	}
	if res.Classification == nil || res.Classification.Intent != "greeting" {
		t.Errorf("Classification = %#v", res.Classification)
	}
}

func TestRunTurnClassifierModelError(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{err: errors.New("model unreachable")}
	runner := buildTestRunner(t, classifier, &fakeChatModel{}, &fakeStore{})

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "How many laptops?"})

	if !strings.Contains(res.Response, "Sorry, I encountered an issue: Error in task classification: model unreachable") {
		t.Errorf("Response = %q", res.Response)
	}
	failed, ok := res.Outcome.(model.TurnFailed)
	if !ok {
		t.Fatalf("Outcome = %T, want TurnFailed", res.Outcome)
	}
	if failed.Stage != model.StageClassify {
		t.Errorf("Stage = %q, want %q", failed.Stage, model.StageClassify)
	}
	if res.Classification != nil {
		t.Errorf("Classification = %#v, want nil", res.Classification)
	}
}

func TestRunTurnClassifierMalformedJSON(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{
		{Content: "I think you want to query the inventory."},
	}}
	runner := buildTestRunner(t, classifier, &fakeChatModel{}, &fakeStore{})

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "show stock"})

	if !strings.HasPrefix(res.Response, "Sorry, I encountered an issue: Error in task classification:") {
		t.Errorf("Response = %q", res.Response)
	}
	if failed, ok := res.Outcome.(model.TurnFailed); !ok || failed.Stage != model.StageClassify {
		t.Errorf("Outcome = %#v", res.Outcome)
	}
}

func TestRunTurnUpsertExtractionFailure(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("upsert")}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: `{"quantity": 5}`},
	}}
	store := &fakeStore{}
	runner := buildTestRunner(t, classifier, extractor, store)

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "add some stuff"})

	if !strings.HasPrefix(res.Response, "Error in upsert agent:") {
		t.Errorf("Response = %q", res.Response)
	}
	failed, ok := res.Outcome.(model.TurnFailed)
	if !ok {
		t.Fatalf("Outcome = %T, want TurnFailed", res.Outcome)
	}
	if failed.Stage != model.StageUpsert {
		t.Errorf("Stage = %q, want %q", failed.Stage, model.StageUpsert)
	}
	if len(store.items) != 0 {
		t.Errorf("store mutated on extraction failure: %#v", store.items)
	}
}

func TestRunTurnUpsertStoreError(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("upsert")}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: `{"item_name": "Monitor", "quantity": 5}`},
	}}
	store := &fakeStore{
		upsertErr: errx.New(errors.New("connection refused"), http.StatusBadGateway, errx.StoreErrorMessage),
	}
	runner := buildTestRunner(t, classifier, extractor, store)

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "Add 5 monitors"})

	if res.Response != fmt.Sprintf("Error: %s", errx.StoreErrorMessage) {
		t.Errorf("Response = %q", res.Response)
	}
	if failed, ok := res.Outcome.(model.TurnFailed); !ok || failed.Stage != model.StageStore {
		t.Errorf("Outcome = %#v", res.Outcome)
	}
}

func TestRunTurnQueryModelError(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{classification("query")}}
	extractor := &fakeChatModel{err: errors.New("model unreachable")}
	runner := buildTestRunner(t, classifier, extractor, &fakeStore{})

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "How many laptops?"})

	if res.Response != "Error in query agent: model unreachable" {
		t.Errorf("Response = %q", res.Response)
	}
	if failed, ok := res.Outcome.(model.TurnFailed); !ok || failed.Stage != model.StageQuery {
		t.Errorf("Outcome = %#v", res.Outcome)
	}
}

func TestRunTurnCodeFencedClassification(t *testing.T) {
	t.Parallel()

	classifier := &fakeChatModel{responses: []*schema.Message{
		{Content: "```json\n{\"intent\": \"query\", \"confidence\": 0.9, \"reasoning\": \"test\"}\n```"},
	}}
	extractor := &fakeChatModel{responses: []*schema.Message{
		{Content: "The inventory is empty."},
	}}
	runner := buildTestRunner(t, classifier, extractor, &fakeStore{})

	res := runner.RunTurn(context.Background(), model.TurnInput{Message: "what do we have?"})

	if res.Failed() {
		t.Fatalf("turn failed: %#v", res.Outcome)
	}
	if res.Classification == nil || res.Classification.Intent != model.IntentQuery {
		t.Errorf("Classification = %#v", res.Classification)
	}
}

func TestBuildGraphValidation(t *testing.T) {
	t.Parallel()

	if _, err := BuildGraph(context.Background(), nil); err == nil {
		t.Error("nil config: expected error")
	}
	if _, err := BuildGraph(context.Background(), &GraphConfig{Store: &fakeStore{}}); err == nil {
		t.Error("nil chat models: expected error")
	}
	if _, err := BuildGraph(context.Background(), &GraphConfig{
		ChatModels: &nodes.ChatModels{Classifier: &fakeChatModel{}, Extractor: &fakeChatModel{}},
	}); err == nil {
		t.Error("nil store: expected error")
	}
}
