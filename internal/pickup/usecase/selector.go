package usecase

import (
	"math/rand"
	"sync"

	"pickup-backend/internal/pickup/domain"
)

// Picker chooses one collector out of a non-empty candidate list
type Picker interface {
	Pick(candidates []*domain.Collector) *domain.Collector
}

// RandomPicker picks uniformly at random. It is safe for concurrent use.
type RandomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker creates a RandomPicker with a fixed seed
func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Pick(candidates []*domain.Collector) *domain.Collector {
	if len(candidates) == 0 {
		return nil
	}
	p.mu.Lock()
	i := p.rng.Intn(len(candidates))
	p.mu.Unlock()
	return candidates[i]
}

// PickerFunc adapts a function to the Picker interface
type PickerFunc func(candidates []*domain.Collector) *domain.Collector

func (f PickerFunc) Pick(candidates []*domain.Collector) *domain.Collector {
	return f(candidates)
}

// roundRobin deals requests to collectors in order: request i goes to
// collector i mod n.
func roundRobin(i int, collectors []*domain.Collector) *domain.Collector {
	return collectors[i%len(collectors)]
}

// withoutCollector returns candidates minus the collector with id
func withoutCollector(candidates []*domain.Collector, id string) []*domain.Collector {
	if id == "" {
		return candidates
	}
	out := make([]*domain.Collector, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
