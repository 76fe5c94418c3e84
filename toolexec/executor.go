/*
executor.go - Tool Executor

PURPOSE:
  Maintains the declarative toolName -> (Definition, Handler) table and
  enforces strict parameter validation before a handler ever runs
  (spec.md §4.6). Handlers are the ONLY bridge between orchestrator
  intent and kernel operations - they must never compute a price or
  currency total themselves.

GROUNDED ON:
  api/handlers.go's Handler struct (held dependencies, one method per
  operation), reshaped into a dispatch table since spec.md §4.6 wants a
  single executeTool(name, bag) entry point; factory/policy.go's
  parseXxx switch-style coercion helpers for the parameter coercion step.
*/
package toolexec

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Handler is invoked with the normalized (coerced, fully validated)
// parameter bag. It must delegate every price to the catalog and every
// total to the engine - never compute one itself.
type Handler func(ctx context.Context, params NormalizedBag) (any, error)

type registeredTool struct {
	definition Definition
	handler    Handler
}

// Executor is the declarative tool table.
type Executor struct {
	tools map[string]registeredTool
}

// New returns an empty Executor.
func New() *Executor {
	return &Executor{tools: make(map[string]registeredTool)}
}

// Register adds a tool definition and its handler. Re-registering the
// same name replaces the prior entry.
func (e *Executor) Register(def Definition, handler Handler) {
	e.tools[def.Name] = registeredTool{definition: def, handler: handler}
}

// Definitions returns every registered tool's declarative description,
// for an orchestrator to introspect.
func (e *Executor) Definitions() []Definition {
	out := make([]Definition, 0, len(e.tools))
	for _, t := range e.tools {
		out = append(out, t.definition)
	}
	return out
}

// ExecuteTool runs spec.md §4.6's four-step algorithm: unknown-tool
// check, per-parameter presence+coercion, undeclared-key rejection, then
// handler invocation.
func (e *Executor) ExecuteTool(ctx context.Context, name string, bag Bag) (any, error) {
	tool, ok := e.tools[name]
	if !ok {
		return nil, unknownTool(name)
	}

	declared := make(map[string]Parameter, len(tool.definition.Parameters))
	for _, p := range tool.definition.Parameters {
		declared[p.Name] = p
	}

	normalized := make(NormalizedBag, len(declared))
	for _, p := range tool.definition.Parameters {
		raw, present := bag[p.Name]
		if !present {
			if p.Required {
				return nil, missingRequired(name, p.Name)
			}
			continue
		}
		coerced, err := coerce(p.Type, raw)
		if err != nil {
			return nil, coercionFailed(name, p.Name, err)
		}
		normalized[p.Name] = coerced
	}

	for key := range bag {
		if _, ok := declared[key]; !ok {
			return nil, unknownParameter(name, key)
		}
	}

	return tool.handler(ctx, normalized)
}

func coerce(t ParamType, raw any) (any, error) {
	switch t {
	case ParamString:
		switch v := raw.(type) {
		case string:
			return v, nil
		default:
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
	case ParamInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("expected int, got %T", raw)
		}
	case ParamDecimal:
		switch v := raw.(type) {
		case decimal.Decimal:
			return v, nil
		case string:
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		case float64:
			return decimal.NewFromFloat(v), nil
		default:
			return nil, fmt.Errorf("expected decimal, got %T", raw)
		}
	default:
		return nil, fmt.Errorf("unknown declared parameter type %q", t)
	}
}
