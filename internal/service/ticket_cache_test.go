package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

type memCache struct {
	store map[string][]domain.Ticket
	hits  int
}

func newMemCache() *memCache {
	return &memCache{store: map[string][]domain.Ticket{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]domain.Ticket, bool) {
	tickets, ok := c.store[key]
	if ok {
		c.hits++
	}
	return tickets, ok
}

func (c *memCache) Set(_ context.Context, key string, tickets []domain.Ticket) {
	c.store[key] = tickets
}

func (c *memCache) Invalidate(_ context.Context, key string) {
	delete(c.store, key)
}

func TestListAllCaching(t *testing.T) {
	f := newFixture()
	cache := newMemCache()
	f.service.cache = cache

	owner := f.addUser("u1", "Ada", "ada@x.com", domain.RoleUser)
	support := f.addUser("s1", "Sam", "sam@x.com", domain.RoleSupport)

	_, err := f.service.Create(context.Background(), owner, TicketCreateInput{Subject: "A", Message: "B"})
	require.NoError(t, err)

	first, err := f.service.ListAll(context.Background(), support)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 0, cache.hits)

	second, err := f.service.ListAll(context.Background(), support)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	// writes drop the cached listing
	_, err = f.service.Create(context.Background(), owner, TicketCreateInput{Subject: "C", Message: "D"})
	require.NoError(t, err)
	third, err := f.service.ListAll(context.Background(), support)
	require.NoError(t, err)
	assert.Len(t, third, 2)
}
