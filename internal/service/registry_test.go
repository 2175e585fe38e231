package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/internal/shared/types"
	"github.com/Slinky-86/anyones-IDE-everyomes-IDE/tests/helpers/testutil"
)

// newTerminalMock builds a mock provider with a terminal-category definition
// and a canned successful Execute.
func newTerminalMock(t *testing.T, id string) *testutil.MockServiceProvider {
	t.Helper()

	m := new(testutil.MockServiceProvider)
	m.On("Definition").Return(testutil.CreateTestService(t, id, types.CategoryTerminal)).Maybe()
	m.On("Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.Result{
			Success: true,
			Data:    map[string]interface{}{"result": "success"},
		}, nil).Maybe()
	return m
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	p := testutil.NewMockServiceProvider(t, "test")

	if err := r.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, ok := r.Get("test"); !ok {
		t.Error("Service should be registered")
	}
}

func TestRegisterEmptyID(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(testutil.NewMockServiceProvider(t, "")); err == nil {
		t.Error("Expected error for empty service ID")
	}
}

func TestUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register(newTerminalMock(t, "test"))

	r.Unregister("test")
	if _, ok := r.Get("test"); ok {
		t.Error("Service should be unregistered")
	}
}

func TestList(t *testing.T) {
	r := NewRegistry()
	r.Register(newTerminalMock(t, "test1"))
	r.Register(newTerminalMock(t, "test2"))

	services := r.List(nil)
	if len(services) != 2 {
		t.Errorf("Expected 2 services, got %d", len(services))
	}

	cat := types.CategoryTerminal
	filtered := r.List(&cat)
	if len(filtered) != 2 {
		t.Errorf("Expected 2 terminal services, got %d", len(filtered))
	}

	other := types.CategorySystem
	if got := r.List(&other); len(got) != 0 {
		t.Errorf("Expected 0 system services, got %d", len(got))
	}
}

func TestDiscover(t *testing.T) {
	r := NewRegistry()
	r.Register(newTerminalMock(t, "terminal"))

	results := r.Discover("terminal test service", 5)
	if len(results) == 0 {
		t.Fatal("Should discover terminal service")
	}

	if results[0].ID != "terminal" {
		t.Errorf("Expected terminal service, got %s", results[0].ID)
	}
}

func TestExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(newTerminalMock(t, "test"))

	ctx := context.Background()
	result, err := r.Execute(ctx, "test.test", map[string]interface{}{}, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	testutil.AssertSuccess(t, result)
	testutil.AssertDataField(t, result, "result", "success")
}

func TestExecuteInvalidToolID(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Execute(context.Background(), "no-dot", nil, nil); err == nil {
		t.Error("Expected error for malformed tool id")
	}
}

func TestExecuteUnknownService(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Execute(context.Background(), "ghost.test", nil, nil); err == nil {
		t.Error("Expected error for unknown service")
	}
}

func TestStats(t *testing.T) {
	r := NewRegistry()
	r.Register(newTerminalMock(t, "test1"))
	r.Register(newTerminalMock(t, "test2"))

	stats := r.Stats()
	totalServices := stats["total_services"].(int)
	if totalServices != 2 {
		t.Errorf("Expected 2 total services, got %d", totalServices)
	}

	totalTools := stats["total_tools"].(int)
	if totalTools != 2 {
		t.Errorf("Expected 2 total tools, got %d", totalTools)
	}
}
