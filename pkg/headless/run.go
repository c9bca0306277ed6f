package headless

import (
	"context"
	"fmt"
)

// RunHeadless asks a single question and waits for the answer. A failed
// exchange is returned as an error after it is recorded and printed.
func RunHeadless(ctx context.Context, cfg Config, question string) error {
	if question == "" {
		return fmt.Errorf("question cannot be empty in headless mode")
	}

	r, err := NewRunner(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize headless mode: %w", err)
	}
	defer r.Close()

	result, err := r.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("failed to ask question: %w", err)
	}
	return result.Err
}
