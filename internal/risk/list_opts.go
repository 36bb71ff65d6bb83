package risk

import (
	"github.com/glorin2500/Sentinel-sub000/internal/pagination"
)

// ListOption configures optional parameters for verdict list queries.
type ListOption func(*listOpts)

type listOpts struct {
	cursor *pagination.Cursor
}

func applyListOpts(opts []ListOption) listOpts {
	var o listOpts
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithCursor filters results to verdicts after the given cursor position.
// Invalid cursors are ignored and the listing starts from the newest verdict.
func WithCursor(cursor string) ListOption {
	return func(o *listOpts) {
		c, err := pagination.Decode(cursor)
		if err == nil {
			o.cursor = c
		}
	}
}
