package scraper

import (
	"context"
	"time"
)

// Cookie is applied to the browser before the content navigation so pages
// that branch on it render the right variant.
type Cookie struct {
	Name  string
	Value string
}

// RenderRequest captures everything needed to produce a rendered document.
type RenderRequest struct {
	URL string
	// WaitSelector is the CSS selector whose presence marks the page as
	// usable. The render fails with ErrRenderTimeout if it never appears.
	WaitSelector string
	// Cookie, when set, is installed between a priming navigation and the
	// real one.
	Cookie *Cookie
}

// Renderer produces fully rendered documents. A Renderer is owned by a single
// caller for the duration of its use and must be closed on every exit path.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
	Close(ctx context.Context) error
}

// RendererFactory hands out independent Renderer instances. The enumeration
// phase and every detail task acquire their own so they never compete over a
// shared browser session.
type RendererFactory interface {
	NewRenderer(ctx context.Context) (Renderer, error)
}

// JobRegistry mediates all job state reads and writes. Implementations must
// serialize access so readers never observe a torn status/result pair.
type JobRegistry interface {
	// Create allocates a fresh job in the starting state.
	Create() (Job, error)
	// Get returns a snapshot of the job, or ErrJobNotFound.
	Get(id string) (Job, error)
	// SetStatus overwrites the status and leaves the result untouched.
	SetStatus(id string, status JobStatus) error
	// SetTerminal overwrites the status and records the terminal result.
	SetTerminal(id string, status JobStatus, result string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs.
type IDGenerator interface {
	NewID() (string, error)
}
