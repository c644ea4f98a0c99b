package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/models"
)

type memoryCache struct {
	values  map[string][]byte
	deleted []string
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	data, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

func TestDashboardCacheRoundTrip(t *testing.T) {
	store := newMemoryCache()
	service := NewDashboardService(nil, nil, nil, store, time.Minute)
	ctx := context.Background()

	service.store(ctx, adminDashboardKey, models.AdminDashboard{ActiveMentors: 4, TotalPayouts: 10200})

	var cached models.AdminDashboard
	if !service.lookup(ctx, adminDashboardKey, &cached) {
		t.Fatalf("expected cached admin dashboard")
	}
	if cached.ActiveMentors != 4 || cached.TotalPayouts != 10200 {
		t.Fatalf("unexpected cached dashboard: %+v", cached)
	}
}

func TestDashboardCacheDisabledWithoutTTL(t *testing.T) {
	store := newMemoryCache()
	service := NewDashboardService(nil, nil, nil, store, 0)
	ctx := context.Background()

	service.store(ctx, adminDashboardKey, models.AdminDashboard{ActiveMentors: 1})
	if len(store.values) != 0 {
		t.Fatalf("expected nothing stored without a ttl")
	}
	var cached models.AdminDashboard
	if service.lookup(ctx, adminDashboardKey, &cached) {
		t.Fatalf("expected a miss without a ttl")
	}
}

func TestDashboardCacheErrorsAreMisses(t *testing.T) {
	store := newMemoryCache()
	store.getErr = errors.New("connection refused")
	service := NewDashboardService(nil, nil, nil, store, time.Minute)

	var cached models.MentorDashboard
	if service.lookup(context.Background(), mentorDashboardKey(3), &cached) {
		t.Fatalf("expected cache errors to be treated as a miss")
	}
}

func TestDashboardInvalidateDropsAdminAndMentorKeys(t *testing.T) {
	store := newMemoryCache()
	service := NewDashboardService(nil, nil, nil, store, time.Minute)

	service.Invalidate(context.Background(), 3, 9)

	want := []string{"dashboard:admin", "dashboard:mentor:3", "dashboard:mentor:9"}
	if len(store.deleted) != len(want) {
		t.Fatalf("expected %v deleted, got %v", want, store.deleted)
	}
	for i := range want {
		if store.deleted[i] != want[i] {
			t.Fatalf("expected %v deleted, got %v", want, store.deleted)
		}
	}
}
