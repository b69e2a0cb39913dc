package domain

import (
	"errors"
	"fmt"
)

var (
	ErrModerationUnavailable  = errors.New("moderation unavailable")
	ErrTemplateNotFound       = errors.New("instruction template not found")
	ErrUnknownModel           = errors.New("unknown model")
	ErrInvalidReply           = errors.New("reply reference without resolvable text")
	ErrUnsupportedModelFamily = errors.New("unsupported model family")
	ErrNoChoices              = errors.New("provider returned no choices")
	ErrBannedPhrase           = errors.New("banned phrase in prompt")
)

// QuotaExceededError reports the exact token count that tripped the quota.
type QuotaExceededError struct {
	Count int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("prompt has %d tokens, limit is %d", e.Count, e.Limit)
}

// ContentRejectedError is a terminal-but-expected content policy rejection.
type ContentRejectedError struct {
	Reason string
}

func (e *ContentRejectedError) Error() string {
	return "content rejected: " + e.Reason
}

// TemplateRenderError wraps a failure inside the external template engine.
// It indicates a configuration defect, not a user error.
type TemplateRenderError struct {
	Name string
	Err  error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("template %q: render failed: %v", e.Name, e.Err)
}

func (e *TemplateRenderError) Unwrap() error { return e.Err }

// RemoteCallError wraps a remote provider failure. The cause is logged in
// detail while the user sees a generic message.
type RemoteCallError struct {
	Err error
}

func (e *RemoteCallError) Error() string {
	return "remote call failed: " + e.Err.Error()
}

func (e *RemoteCallError) Unwrap() error { return e.Err }
