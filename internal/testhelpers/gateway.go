package testhelpers

import (
	"context"
	"sync"

	"lkcrawl/internal/models"
)

// MemoryGateway keeps committed rows in memory. Set CommitErr to make the
// next commits fail.
type MemoryGateway struct {
	mu sync.Mutex

	staged    []any
	Committed []any
	Commits   int
	Discards  int
	CommitErr error
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{}
}

func (g *MemoryGateway) Stage(row any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.staged = append(g.staged, row)
}

func (g *MemoryGateway) Commit(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	staged := g.staged
	g.staged = nil
	if g.CommitErr != nil {
		return g.CommitErr
	}
	g.Committed = append(g.Committed, staged...)
	g.Commits++
	return nil
}

func (g *MemoryGateway) Discard() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.staged = nil
	g.Discards++
}

func (g *MemoryGateway) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.staged)
}

func (g *MemoryGateway) CompanyExists(_ context.Context, urnID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, row := range g.Committed {
		if c, ok := row.(*models.Company); ok && c.URNID == urnID {
			return true, nil
		}
	}
	return false, nil
}

func (g *MemoryGateway) Companies() []*models.Company {
	return rowsOf[*models.Company](g)
}

func (g *MemoryGateway) Locations() []*models.Location {
	return rowsOf[*models.Location](g)
}

func (g *MemoryGateway) People() []*models.People {
	return rowsOf[*models.People](g)
}

func rowsOf[T any](g *MemoryGateway) []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	var rows []T
	for _, row := range g.Committed {
		if r, ok := row.(T); ok {
			rows = append(rows, r)
		}
	}
	return rows
}
