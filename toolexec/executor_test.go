package toolexec_test

import (
	"context"
	"testing"

	"github.com/posware/kernel/toolexec"
	"github.com/stretchr/testify/require"
)

func echoingExecutor() *toolexec.Executor {
	e := toolexec.New()
	e.Register(toolexec.Definition{
		Name:     "add_item",
		Category: "transaction",
		Parameters: []toolexec.Parameter{
			{Name: "productId", Type: toolexec.ParamString, Required: true},
			{Name: "quantity", Type: toolexec.ParamInt, Required: true},
		},
	}, func(ctx context.Context, params toolexec.NormalizedBag) (any, error) {
		return params, nil
	})
	return e
}

// Property 9: tool parameter strictness.
func TestExecutor_UnknownToolFails(t *testing.T) {
	e := echoingExecutor()
	_, err := e.ExecuteTool(context.Background(), "does_not_exist", toolexec.Bag{})
	require.Error(t, err)
}

func TestExecutor_MissingRequiredParameterFails(t *testing.T) {
	e := echoingExecutor()
	_, err := e.ExecuteTool(context.Background(), "add_item", toolexec.Bag{"productId": "SKU1"})
	require.Error(t, err)
}

func TestExecutor_UndeclaredParameterFails(t *testing.T) {
	e := echoingExecutor()
	_, err := e.ExecuteTool(context.Background(), "add_item", toolexec.Bag{
		"productId": "SKU1", "quantity": 1, "surprise": "nope",
	})
	require.Error(t, err)
}

func TestExecutor_UncoercibleValueFails(t *testing.T) {
	e := echoingExecutor()
	_, err := e.ExecuteTool(context.Background(), "add_item", toolexec.Bag{
		"productId": "SKU1", "quantity": "not-a-number",
	})
	require.Error(t, err)
}

func TestExecutor_ValidCallReachesHandler(t *testing.T) {
	e := echoingExecutor()
	result, err := e.ExecuteTool(context.Background(), "add_item", toolexec.Bag{
		"productId": "SKU1", "quantity": 2,
	})
	require.NoError(t, err)

	normalized, ok := result.(toolexec.NormalizedBag)
	require.True(t, ok)
	require.Equal(t, "SKU1", normalized.String("productId"))
	require.Equal(t, 2, normalized.Int("quantity"))
}
