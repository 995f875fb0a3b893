package domain

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Link is one entry on a profile's page. One Profile has many Links
// (one-to-many). Deleting a link only flips IsActive - the row and its
// click history stay around.
type Link struct {
	ID          int64
	UserID      int64
	Title       string
	URL         string
	Description *string
	Image       *string
	Category    string // one of the Category* constants
	// IsAutoImported + Source record provenance for links pulled in from an
	// external platform rather than typed by the owner.
	IsAutoImported bool
	Source         *string
	// Clicks is a denormalized running counter. It must always equal the
	// number of click events referencing this link; the event repository
	// keeps the two in step inside one transaction.
	Clicks    int64
	Position  int // Explicit ordering on the page, ascending
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Link categories
const (
	CategoryVideo    = "video"
	CategorySocial   = "social"
	CategoryStore    = "store"
	CategoryResource = "resource"
	CategoryEvent    = "event"
	CategoryMusic    = "music"
	CategoryCustom   = "custom"
)

var linkCategories = map[string]bool{
	CategoryVideo:    true,
	CategorySocial:   true,
	CategoryStore:    true,
	CategoryResource: true,
	CategoryEvent:    true,
	CategoryMusic:    true,
	CategoryCustom:   true,
}

var (
	ErrEmptyTitle      = errors.New("link title is required")
	ErrEmptyURL        = errors.New("link URL is required")
	ErrInvalidURL      = errors.New("invalid URL format")
	ErrInvalidCategory = errors.New("unknown link category")
)

// LinkPatch carries a full-overwrite link update. Same semantics as
// ProfilePatch: nil means "set to NULL", except Title/URL/Category which are
// required and fall back to defaults when absent.
type LinkPatch struct {
	Title       string
	URL         string
	Description *string
	Image       *string
	Category    string
}

// NewLink is a constructor that creates an active link with defaults applied.
func NewLink(userID int64, title, linkURL string) *Link {
	return &Link{
		UserID:    userID,
		Title:     title,
		URL:       linkURL,
		Category:  CategoryCustom,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// Validate checks the link fields before saving.
func (l *Link) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrEmptyTitle
	}
	if err := ValidateLinkURL(l.URL); err != nil {
		return err
	}
	if !linkCategories[l.Category] {
		return ErrInvalidCategory
	}
	return nil
}

// ValidateLinkURL checks that a target URL is non-empty and http(s).
func ValidateLinkURL(linkURL string) error {
	if strings.TrimSpace(linkURL) == "" {
		return ErrEmptyURL
	}
	parsed, err := url.Parse(linkURL)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	if parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// ValidCategory reports whether category names a known link category.
func ValidCategory(category string) bool {
	return linkCategories[category]
}
