package toolexec

import "fmt"

// ExecutionError names the offending tool and parameter, per spec.md §4.6
// and §7's "short, specific message naming the offending field" rule.
type ExecutionError struct {
	Tool      string
	Parameter string
	Reason    string
}

func (e *ExecutionError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("toolexec: %s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("toolexec: %s(%s): %s", e.Tool, e.Parameter, e.Reason)
}

func unknownTool(name string) error {
	return &ExecutionError{Tool: name, Reason: "unknown tool"}
}

func missingRequired(tool, param string) error {
	return &ExecutionError{Tool: tool, Parameter: param, Reason: "missing required parameter"}
}

func unknownParameter(tool, param string) error {
	return &ExecutionError{Tool: tool, Parameter: param, Reason: "unknown parameter"}
}

func coercionFailed(tool, param string, cause error) error {
	return &ExecutionError{Tool: tool, Parameter: param, Reason: fmt.Sprintf("cannot coerce value: %v", cause)}
}
