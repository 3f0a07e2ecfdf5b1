package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs for festpass.
// Pattern: festpass:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // event details
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // event listings
	TTL_REALTIME_SHORT     = 30 * time.Second // availability counters
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "festpass"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST        = CACHE_PREFIX + ":events:list"               // + :page:X:limit:Y:search:Z
	CACHE_KEY_EVENT_DETAIL       = CACHE_PREFIX + ":events:detail:uuid:"       // + event-id
	CACHE_KEY_EVENT_AVAILABILITY = CACHE_PREFIX + ":events:availability:uuid:" // + event-id
)

const (
	TTL_EVENT_LIST   = TTL_SEMI_STATIC_QUICK  // 15 minutes
	TTL_EVENT_DETAIL = TTL_SEMI_STATIC_MEDIUM // 2 hours
	// availability moves with every booking, keep it barely cached
	TTL_EVENT_AVAILABILITY = TTL_REALTIME_SHORT
)

// ================== CACHE INVALIDATION PATTERNS ==================

// Patterns for cache invalidation, used with SCAN
const (
	PATTERN_INVALIDATE_EVENT_LIST   = CACHE_KEY_EVENTS_LIST + "*"
	PATTERN_INVALIDATE_EVENT_ALL    = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_EVENT_DETAIL = CACHE_PREFIX + ":events:*:uuid:" // + event-id + *
)

// ================== HELPER FUNCTIONS ==================

// BuildEventListKey -> "festpass:events:list:page:1:limit:10:search:jazz"
func BuildEventListKey(page, limit int, search string) string {
	key := fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_EVENTS_LIST, page, limit)
	if search != "" {
		key += ":search:" + search
	}
	return key
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildEventAvailabilityKey(eventID string) string {
	return CACHE_KEY_EVENT_AVAILABILITY + eventID
}

func BuildEventInvalidationPattern(eventID string) string {
	return PATTERN_INVALIDATE_EVENT_DETAIL + eventID + "*"
}
