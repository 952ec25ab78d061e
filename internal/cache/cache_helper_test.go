package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedDistrict struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "district:"), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	want := cachedDistrict{ID: 1, Name: "kamrup"}
	if err := helper.Set(ctx, "id:1", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedDistrict
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	var got cachedDistrict
	if err := helper.Get(ctx, "id:404", &got); err != ErrCacheNotFound {
		t.Errorf("Get miss error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_NilClientDegradesGracefully(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "district:")

	if err := helper.Set(ctx, "id:1", cachedDistrict{ID: 1}, time.Minute); err != nil {
		t.Errorf("Set with nil client = %v, want nil", err)
	}
	var got cachedDistrict
	if err := helper.Get(ctx, "id:1", &got); err != ErrCacheNotAvailable {
		t.Errorf("Get with nil client = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.Delete(ctx, "id:1"); err != nil {
		t.Errorf("Delete with nil client = %v, want nil", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	helper.Set(ctx, "id:1", cachedDistrict{ID: 1}, time.Minute)
	helper.Set(ctx, "id:2", cachedDistrict{ID: 2}, time.Minute)

	if err := helper.Delete(ctx, "id:1", "id:2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var got cachedDistrict
	if err := helper.Get(ctx, "id:1", &got); err != ErrCacheNotFound {
		t.Errorf("expected id:1 to be deleted, got %v", err)
	}
	if err := helper.Get(ctx, "id:2", &got); err != ErrCacheNotFound {
		t.Errorf("expected id:2 to be deleted, got %v", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	helper.Set(ctx, "state:assam:all", []cachedDistrict{{ID: 1}}, time.Minute)
	helper.Set(ctx, "state:bihar:all", []cachedDistrict{{ID: 2}}, time.Minute)
	helper.Set(ctx, "id:1", cachedDistrict{ID: 1}, time.Minute)

	if err := helper.InvalidatePattern(ctx, "state:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var districts []cachedDistrict
	if err := helper.Get(ctx, "state:assam:all", &districts); err != ErrCacheNotFound {
		t.Errorf("pattern keys should be gone, got %v", err)
	}

	var got cachedDistrict
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Errorf("unrelated key should survive, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t)

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return cachedDistrict{ID: 7, Name: "cachar"}, nil
	}

	var got cachedDistrict
	if err := helper.CacheOrExecute(ctx, "id:7", &got, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if got.ID != 7 || fetches != 1 {
		t.Errorf("first call: got %+v after %d fetches", got, fetches)
	}

	// The async cache fill races the second call; wait for the key to land
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mr.Exists("district:id:7") {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	var again cachedDistrict
	if err := helper.CacheOrExecute(ctx, "id:7", &again, time.Minute, fetch); err != nil {
		t.Fatalf("second CacheOrExecute failed: %v", err)
	}
	if again.Name != "cachar" {
		t.Errorf("second call = %+v, want cached value", again)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d, want 1 (second call served from cache)", fetches)
	}
}

func TestNewCacheManager(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		cm := NewCacheManager(nil)
		if err := cm.HealthCheck(context.Background()); err != ErrCacheNotAvailable {
			t.Errorf("HealthCheck = %v, want ErrCacheNotAvailable", err)
		}
	})

	t.Run("live client", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		cm := NewCacheManager(client)
		if err := cm.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck failed: %v", err)
		}
		if cm.District.prefix != DistrictCacheConfig.Prefix {
			t.Errorf("district prefix = %q, want %q", cm.District.prefix, DistrictCacheConfig.Prefix)
		}
	})
}
