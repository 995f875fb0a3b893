package domain

import (
	"errors"
	"time"
)

// Badge is a derived community achievement attached to a profile. Badges
// are created by an out-of-band policy (there is no scoring algorithm in
// the core), never mutated, and not deduplicated.
type Badge struct {
	ID       int64
	UserID   int64
	Type     string // one of the Badge* constants
	EarnedAt time.Time
	// Criteria is the opaque JSON payload describing what triggered the
	// award. The core stores it verbatim.
	Criteria []byte
}

// Badge types
const (
	BadgeTopFan            = "top_fan"
	BadgeFirstClicker      = "first_clicker"
	BadgeTopReferrer       = "top_referrer"
	BadgeCommunityChampion = "community_champion"
	BadgeEarlySupporter    = "early_supporter"
)

var badgeTypes = map[string]bool{
	BadgeTopFan:            true,
	BadgeFirstClicker:      true,
	BadgeTopReferrer:       true,
	BadgeCommunityChampion: true,
	BadgeEarlySupporter:    true,
}

var ErrInvalidBadgeType = errors.New("unknown badge type")

// ValidBadgeType reports whether badgeType names a known badge.
func ValidBadgeType(badgeType string) bool {
	return badgeTypes[badgeType]
}
