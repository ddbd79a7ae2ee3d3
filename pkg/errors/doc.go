// Package errors provides structured error types for better observability
// and programmatic error handling across the collector.
//
// Soft collection failures are classified with codes rather than compared
// against message text:
//
//	reply, err := client.Issue(ctx, "osd tree", timeout)
//	switch errors.CodeOf(err) {
//	case errors.ErrCodeUnsupported, errors.ErrCodeTimeout:
//	    // store empty content, keep going
//	}
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "control plane command timed out",
//	    ctx.Err(),
//	    map[string]any{
//	        "prefix": "pg dump",
//	    },
//	)
package errors
