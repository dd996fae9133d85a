package pipeline

import (
	"context"

	"owldlv/internal/failure"
)

// RewriteRequest hands a Rewriter the staged inputs of a datarewclip run.
type RewriteRequest struct {
	Rules []string
	Facts []string
	Query string

	// Scratch is a folder the rewriter may write to; it is deleted after
	// the run.
	Scratch string
}

// RewriteResult is what the solver receives.
type RewriteResult struct {
	Rules []string
	Facts []string
	Query string
}

// Rewriter implements the datarewclip transformation. Registered with
// WithRewriter; without one the strategy is rejected before any process runs.
type Rewriter interface {
	Rewrite(ctx context.Context, req RewriteRequest) (RewriteResult, error)
}

// RewriterFunc adapts a function to Rewriter.
type RewriterFunc func(ctx context.Context, req RewriteRequest) (RewriteResult, error)

func (f RewriterFunc) Rewrite(ctx context.Context, req RewriteRequest) (RewriteResult, error) {
	return f(ctx, req)
}

// errNoRewriter rejects datarewclip when no Rewriter was registered.
func errNoRewriter() error {
	return failure.New(failure.KindConfig, "datarewclip",
		"datarewclip has no registered transformation (no Rewriter registered with WithRewriter)")
}
