package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Profile represents one published link-in-bio page.
// This is our "domain model" - it carries the persisted state plus the
// behavior that belongs to it (validation, claim-token rules).
type Profile struct {
	ID           int64
	Name         *string
	Username     string // Unique, mutable handle used in public URLs
	Bio          *string
	ProfilePhoto *string
	CoverPhoto   *string
	Mode         string // "creator" or "business"
	Theme        string
	// ClaimToken is the only credential for claiming an anonymous profile.
	// It is generated once at creation and never recoverable afterwards.
	// Claim consumption (verifying a token, clearing IsAnonymous) is not
	// implemented yet; the token column is issuance/storage only.
	// Excluded from JSON so it can never leak through the page cache.
	ClaimToken  *string `json:"-"`
	IsAnonymous bool
	IsVerified  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileStats are the derived numbers shown on the public page.
type ProfileStats struct {
	LinkCount   int64
	TotalClicks int64
	TotalViews  int64
}

// ProfilePage is the full public payload: profile + stats + active links + badges.
type ProfilePage struct {
	Profile Profile
	Stats   ProfileStats
	Links   []*Link
	Badges  []*Badge
}

// Profile modes
const (
	ModeCreator  = "creator"
	ModeBusiness = "business"
)

// Defaults applied when an anonymous profile is created without them.
const (
	DefaultTheme = "facebook-classic"
	DefaultMode  = ModeCreator
)

// claimTokenBytes gives a 64-hex-character token, enough entropy that a lost
// token cannot be guessed or regenerated.
const claimTokenBytes = 32

// Domain errors - defining errors as values makes them testable
// and allows callers to check for specific error types with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidMode     = errors.New("mode must be creator or business")
	ErrInvalidUsername = errors.New("username must be 3-100 characters, alphanumeric with hyphens and underscores")
)

// ProfilePatch carries the fields of a profile update. Every field is a
// pointer and a nil pointer means "overwrite with NULL", NOT "leave
// unchanged". That destructive behavior is deliberate: it is what the
// original API has always done and clients depend on it. Callers that want
// to keep a field must send its current value.
type ProfilePatch struct {
	Name         *string
	Bio          *string
	Theme        *string
	ProfilePhoto *string
	CoverPhoto   *string
}

// NewAnonymousProfile builds a fresh anonymous profile with a synthesized
// username (when none was supplied) and a claim token. The username is only
// collision-resistant, not unique - the service retries on a uniqueness
// violation from the store.
func NewAnonymousProfile(name, username, bio, mode, theme string) (*Profile, error) {
	if username == "" {
		username = SynthesizeUsername()
	}
	if mode == "" {
		mode = DefaultMode
	}
	if theme == "" {
		theme = DefaultTheme
	}

	p := &Profile{
		Name:        optional(name),
		Username:    username,
		Bio:         optional(bio),
		Mode:        mode,
		Theme:       theme,
		IsAnonymous: true,
		CreatedAt:   time.Now(),
	}

	token, err := NewClaimToken()
	if err != nil {
		return nil, err
	}
	p.ClaimToken = &token

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the profile fields before saving.
func (p *Profile) Validate() error {
	if !isValidUsername(p.Username) {
		return ErrInvalidUsername
	}
	if p.Mode != ModeCreator && p.Mode != ModeBusiness {
		return ErrInvalidMode
	}
	return nil
}

// NewClaimToken returns a cryptographically random, hex-encoded claim token.
func NewClaimToken() (string, error) {
	buf := make([]byte, claimTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate claim token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SynthesizeUsername generates a username for anonymous signups:
// "user" + unix seconds + a random 3-digit suffix. Unlikely to collide,
// not guaranteed - callers must handle a uniqueness-constraint failure.
func SynthesizeUsername() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	var suffix int64
	if err == nil {
		suffix = 100 + n.Int64()
	} else {
		suffix = 100 + time.Now().UnixNano()%900
	}
	return fmt.Sprintf("user%d%d", time.Now().Unix(), suffix)
}

// isValidUsername checks handle shape: 3-100 chars, alphanumeric
// plus hyphens and underscores. Lookups are exact-match; no case folding.
func isValidUsername(username string) bool {
	if len(username) < 3 || len(username) > 100 {
		return false
	}
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-' || char == '_') {
			return false
		}
	}
	return true
}
