package srv

import "context"

type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}

// NewCleanup wraps a close function as a Service that only acts on shutdown.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}

type funcService struct {
	start func(ctx context.Context) error
}

func (f *funcService) Start(ctx context.Context) error {
	return f.start(ctx)
}

func (f *funcService) Shutdown(context.Context) error {
	return nil
}

// NewBackground runs fn as a service. fn should return when ctx is done.
func NewBackground(fn func(ctx context.Context) error) Service {
	return &funcService{start: fn}
}
