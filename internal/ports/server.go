package ports

import (
	"context"
)

// Server is a long-running network front end
type Server interface {
	// Start serves until Stop is called
	Start() error

	// Stop shuts the server down, waiting for in-flight requests until ctx expires
	Stop(ctx context.Context) error
}
