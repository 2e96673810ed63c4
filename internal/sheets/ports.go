package sheets

import (
	"context"

	"hisab/internal/core"
)

// Ports for outbound adapters.
type (
	// StatementWriter upserts a monthly statement into its backing
	// store. The rowRef identifies where the statement landed.
	StatementWriter interface {
		WriteStatement(ctx context.Context, view core.MonthView) (rowRef string, err error)
	}
)
