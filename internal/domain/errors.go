package domain

import "errors"

// Error taxonomy shared by the orchestrator and its adapters. Callers match
// with errors.Is; adapters wrap these with fmt.Errorf("...: %w").
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrAgentInvocation = errors.New("agent invocation failed")
	ErrParse           = errors.New("agent response could not be mapped")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
)
