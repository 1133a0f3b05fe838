// Package blessing picks the short closing line printed on receipts.
package blessing

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"family-store/internal/model"
)

// Fallback is printed when no other blessing is available.
const Fallback = "願這份簡單的選擇，帶給您一整天的好心情。"

// DefaultBlessings returns the built-in blessing list.
func DefaultBlessings() []string {
	return []string{
		Fallback,
		"簡單的早餐，是家裡最溫暖的問候。",
		"每一份小小的採買，都是對家人的用心。",
		"願今天的每一口，都帶著家的味道。",
		"平凡的日子裡，也有值得細細品嚐的幸福。",
	}
}

// Selector chooses a blessing for an order. Implementations never fail;
// they degrade to a local choice instead.
type Selector interface {
	Select(ctx context.Context, order *model.Order) string
}

// Loader reads a blessing list, one blessing per line.
type Loader interface {
	Load(ctx context.Context, path string) ([]string, error)
}

// RandomSelector picks uniformly from a fixed list.
type RandomSelector struct {
	mu        sync.Mutex
	blessings []string
	rng       *rand.Rand
}

// NewRandomSelector creates a selector over blessings. A nil rng is seeded
// from the clock; tests pass a fixed seed for deterministic picks.
func NewRandomSelector(blessings []string, rng *rand.Rand) *RandomSelector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	list := make([]string, len(blessings))
	copy(list, blessings)

	return &RandomSelector{
		blessings: list,
		rng:       rng,
	}
}

// Select returns a random blessing, or Fallback when the list is empty.
func (s *RandomSelector) Select(_ context.Context, _ *model.Order) string {
	if len(s.blessings) == 0 {
		return Fallback
	}

	s.mu.Lock()
	i := s.rng.IntN(len(s.blessings))
	s.mu.Unlock()

	return s.blessings[i]
}

// Len returns the number of blessings available.
func (s *RandomSelector) Len() int {
	return len(s.blessings)
}
