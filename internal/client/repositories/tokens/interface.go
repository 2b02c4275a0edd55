package tokens

import (
	"context"
)

// Pair is the persisted token pair. A zero Pair means "no session".
type Pair struct {
	Access  string
	Refresh string
}

func (p Pair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// Repository persists the token pair. Save and Clear are atomic: either
// both tokens change or neither does.
type Repository interface {
	Load(ctx context.Context) (Pair, error)
	Save(ctx context.Context, p Pair) error
	Clear(ctx context.Context) error
}
