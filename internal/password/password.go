package password

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt.
//
// The cost is the bcrypt work factor; it is embedded in the produced hash
// together with a per-call random salt, so Check needs no configuration to
// verify a hash produced with any cost.
type Hasher struct {
	cost int
}

// Opt configures a Hasher.
type Opt func(*Hasher)

// WithCost sets the bcrypt work factor. Out-of-range values fall back to
// bcrypt.DefaultCost.
func WithCost(cost int) Opt {
	return func(h *Hasher) {
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			cost = bcrypt.DefaultCost
		}
		h.cost = cost
	}
}

// New creates a Hasher with the given options.
func New(opts ...Opt) *Hasher {
	h := &Hasher{cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash produces a salted bcrypt hash of the raw password.
func (h *Hasher) Hash(ctx context.Context, raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Check reports whether raw matches the given hash. A malformed hash
// verifies as false rather than returning an error.
func (h *Hasher) Check(ctx context.Context, raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
