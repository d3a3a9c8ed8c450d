package llm

import "context"

// CompletionOptions tune a single completion request
type CompletionOptions struct {
	Model        string  // overrides the client default when non-empty
	Temperature  float32 // 0..2
	JSONResponse bool    // request response_format json_object
}

// Completer produces a completion for an instruction and content pair.
// Implementations return the raw assistant message content.
type Completer interface {
	Complete(ctx context.Context, instruction, content string, opts CompletionOptions) (string, error)

	// Configured reports whether the backend has credentials and is enabled
	Configured() bool
}
