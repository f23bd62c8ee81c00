package main

import (
	"context"
	"errors"

	"github.com/elee1766/campusadmin/src/campusagent/toolsutil"
	"github.com/elee1766/campusadmin/src/config"
	"github.com/elee1766/campusadmin/src/orclient"
	"github.com/elee1766/campusadmin/src/storage"
)

// Exit codes following standard conventions
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error
	ExitUsage       = 2 // Usage error
	ExitConfig      = 3 // Configuration error
	ExitAuth        = 4 // Authentication error
	ExitNotFound    = 5 // Record not found
	ExitNetwork     = 6 // Network error
	ExitTimeout     = 7 // Timeout error
	ExitInterrupted = 8 // Interrupted by user
)

// errNotFound marks lookups of missing records.
var errNotFound = errors.New("not found")

// exitCode determines the appropriate exit code for an error
func exitCode(err error) int {
	var (
		validation config.ValidationError
		apiErr     *orclient.APIError
		timeoutErr *orclient.TimeoutError
	)

	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &validation):
		return ExitConfig
	case errors.Is(err, orclient.ErrNoAPIKey):
		return ExitAuth
	case errors.As(err, &apiErr) && apiErr.IsAuthError():
		return ExitAuth
	case errors.As(err, &apiErr):
		return ExitNetwork
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, errNotFound), errors.Is(err, toolsutil.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, storage.ErrInvalidField), errors.Is(err, toolsutil.ErrInvalidParams):
		return ExitUsage
	default:
		return ExitError
	}
}
