package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateSessionCache invalidates all caches touched by a session write.
// Covers the trainer's listings and the district aggregate stats, since both
// are derived from session rows.
func InvalidateSessionCache(ctx context.Context, cm *CacheManager, sessionID uint, trainerID string, districtID uint) {
	SafeDelete(ctx, cm.Session, fmt.Sprintf("id:%d", sessionID))

	SafeInvalidatePattern(ctx, cm.Session, fmt.Sprintf("trainer:%s:*", trainerID))
	SafeInvalidatePattern(ctx, cm.Session, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("district:%d:*", districtID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("trainer:%s:*", trainerID))
}

// InvalidateDistrictCache invalidates the district catalog caches after an
// import or a stats rollup.
func InvalidateDistrictCache(ctx context.Context, cm *CacheManager, districtID uint, state string) {
	SafeDelete(ctx, cm.District, fmt.Sprintf("id:%d", districtID))

	SafeInvalidatePattern(ctx, cm.District, "name:*")
	SafeInvalidatePattern(ctx, cm.District, fmt.Sprintf("state:%s:*", state))
	SafeInvalidatePattern(ctx, cm.District, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("district:%d:*", districtID))
}
