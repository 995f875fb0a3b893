package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"linkhub/internal/domain"
	"linkhub/internal/service"
)

// Service interfaces as seen by the handler. Using interfaces instead of
// the concrete service types allows for easy mocking in tests.

type ProfileService interface {
	CreateAnonymous(ctx context.Context, input service.CreateProfileInput) (*domain.Profile, error)
	GetPage(ctx context.Context, username string) (*domain.ProfilePage, error)
	Update(ctx context.Context, username string, patch domain.ProfilePatch) error
}

type LinkService interface {
	Create(ctx context.Context, input service.CreateLinkInput) (*domain.Link, error)
	Update(ctx context.Context, id int64, patch domain.LinkPatch) error
	SoftDelete(ctx context.Context, id int64) error
}

type AnalyticsService interface {
	RecordView(ctx context.Context, ref service.ProfileRef, client domain.ClientInfo) error
	RecordClick(ctx context.Context, ref service.ProfileRef, linkID int64, client domain.ClientInfo) error
	Report(ctx context.Context, userID int64) (*domain.AnalyticsReport, error)
}

type BadgeService interface {
	Award(ctx context.Context, userID int64, badgeType string, criteria json.RawMessage) (*domain.Badge, error)
}

// Uploader stores one uploaded image and returns its public URL.
type Uploader interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
}

// Handler holds dependencies for HTTP handlers, injected through the
// constructor rather than reached for globally.
type Handler struct {
	profiles  ProfileService
	links     LinkService
	analytics AnalyticsService
	badges    BadgeService
	uploader  Uploader
	logger    *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	profiles ProfileService,
	links LinkService,
	analytics AnalyticsService,
	badges BadgeService,
	uploader Uploader,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		profiles:  profiles,
		links:     links,
		analytics: analytics,
		badges:    badges,
		uploader:  uploader,
		logger:    logger,
	}
}

// Routes registers every API route on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Status)
	mux.HandleFunc("POST /api/users/create-anonymous", h.CreateAnonymousProfile)
	mux.HandleFunc("GET /api/users/{username}", h.GetProfile)
	mux.HandleFunc("PUT /api/users/{username}", h.UpdateProfile)
	mux.HandleFunc("POST /api/links", h.CreateLink)
	mux.HandleFunc("PUT /api/links/{id}", h.UpdateLink)
	mux.HandleFunc("DELETE /api/links/{id}", h.DeleteLink)
	mux.HandleFunc("POST /api/analytics/track-view", h.TrackView)
	mux.HandleFunc("POST /api/analytics/track-click", h.TrackClick)
	mux.HandleFunc("GET /api/analytics/{userID}", h.GetAnalytics)
	mux.HandleFunc("POST /api/badges", h.AwardBadge)
	mux.HandleFunc("POST /api/upload", h.Upload)
	mux.HandleFunc("GET /health/live", h.HealthCheck)
}

// Request/Response DTOs. These stay separate from domain models so the API
// contract survives internal refactors, and so nothing internal (like the
// claim token outside creation) leaks by accident.

type CreateProfileRequest struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Theme    string `json:"theme,omitempty"`
}

// CreateProfileResponse is the one and only place the claim token appears.
type CreateProfileResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	ClaimToken string `json:"claim_token"`
}

type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	Theme        *string `json:"theme"`
	ProfilePhoto *string `json:"profile_photo"`
	CoverPhoto   *string `json:"cover_photo"`
}

type ProfileResponse struct {
	ID           int64         `json:"id"`
	Name         *string       `json:"name"`
	Username     string        `json:"username"`
	Bio          *string       `json:"bio"`
	ProfilePhoto *string       `json:"profile_photo"`
	CoverPhoto   *string       `json:"cover_photo"`
	Mode         string        `json:"mode"`
	Theme        string        `json:"theme"`
	IsVerified   bool          `json:"is_verified"`
	Stats        StatsResponse `json:"stats"`
}

type StatsResponse struct {
	TotalClicks int64 `json:"total_clicks"`
	TotalViews  int64 `json:"total_views"`
	LinkCount   int64 `json:"link_count"`
}

type LinkResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Description    *string   `json:"description"`
	Image          *string   `json:"image"`
	Type           string    `json:"type"`
	Clicks         int64     `json:"clicks"`
	IsAutoImported bool      `json:"is_auto_imported"`
	Source         *string   `json:"source"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
}

type BadgeResponse struct {
	ID       int64           `json:"id"`
	Type     string          `json:"badge_type"`
	EarnedAt time.Time       `json:"earned_at"`
	Criteria json.RawMessage `json:"criteria,omitempty"`
}

type ProfilePageResponse struct {
	User   ProfileResponse `json:"user"`
	Links  []LinkResponse  `json:"links"`
	Badges []BadgeResponse `json:"badges"`
}

type CreateLinkRequest struct {
	UserID         *int64  `json:"user_id"`
	Username       string  `json:"username,omitempty"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Description    *string `json:"description"`
	Image          *string `json:"image"`
	Type           string  `json:"type,omitempty"`
	IsAutoImported bool    `json:"is_auto_imported,omitempty"`
	Source         *string `json:"source"`
	Position       int     `json:"position,omitempty"`
}

type CreateLinkResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type UpdateLinkRequest struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Type        string  `json:"type,omitempty"`
}

type TrackViewRequest struct {
	Username string `json:"username,omitempty"`
	UserID   *int64 `json:"user_id,omitempty"`
	Referrer string `json:"referrer,omitempty"`
}

type TrackClickRequest struct {
	Username string `json:"username,omitempty"`
	UserID   *int64 `json:"user_id,omitempty"`
	LinkID   int64  `json:"link_id"`
	Referrer string `json:"referrer,omitempty"`
}

type TrackResponse struct {
	Tracked bool `json:"tracked"`
}

type DailyClicksResponse struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type ReferrerResponse struct {
	Referrer string `json:"referrer"`
	Clicks   int64  `json:"clicks"`
}

type LinkPerformanceResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Clicks       int64  `json:"clicks"`
	RecentClicks int64  `json:"recent_clicks"`
}

type AnalyticsResponse struct {
	DailyClicks     []DailyClicksResponse     `json:"daily_clicks"`
	TopReferrers    []ReferrerResponse        `json:"top_referrers"`
	LinkPerformance []LinkPerformanceResponse `json:"link_performance"`
}

type AwardBadgeRequest struct {
	UserID   int64           `json:"user_id"`
	Type     string          `json:"badge_type"`
	Criteria json.RawMessage `json:"criteria,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

// Status handles GET /
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "LinkHub API is running!",
		"version": "1.0",
	})
}

// CreateAnonymousProfile handles POST /api/users/create-anonymous
func (h *Handler) CreateAnonymousProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	profile, err := h.profiles.CreateAnonymous(r.Context(), service.CreateProfileInput{
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
		Mode:     req.Mode,
		Theme:    req.Theme,
	})
	if err != nil {
		h.logger.Error("Failed to create profile", "error", err)
		respondDomainError(w, err)
		return
	}

	var token string
	if profile.ClaimToken != nil {
		token = *profile.ClaimToken
	}

	respondSuccess(w, http.StatusCreated, CreateProfileResponse{
		ID:         profile.ID,
		Username:   profile.Username,
		ClaimToken: token,
	}, "Profile created")
}

// GetProfile handles GET /api/users/{username}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	page, err := h.profiles.GetPage(r.Context(), username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.Error("Failed to load profile page", "username", username, "error", err)
		}
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, toPageResponse(page), "")
}

// UpdateProfile handles PUT /api/users/{username}
// Fields absent from the body are overwritten with NULL - longstanding API
// contract, callers must send every field they want to keep.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	err := h.profiles.Update(r.Context(), username, domain.ProfilePatch{
		Name:         req.Name,
		Bio:          req.Bio,
		Theme:        req.Theme,
		ProfilePhoto: req.ProfilePhoto,
		CoverPhoto:   req.CoverPhoto,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.Error("Failed to update profile", "username", username, "error", err)
		}
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "User updated successfully")
}

// CreateLink handles POST /api/links
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	link, err := h.links.Create(r.Context(), service.CreateLinkInput{
		UserID:         req.UserID,
		Username:       req.Username,
		Title:          req.Title,
		URL:            req.URL,
		Description:    req.Description,
		Image:          req.Image,
		Category:       req.Type,
		IsAutoImported: req.IsAutoImported,
		Source:         req.Source,
		Position:       req.Position,
	})
	if err != nil {
		h.logger.Warn("Failed to create link", "error", err)
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, CreateLinkResponse{
		ID:    link.ID,
		Title: link.Title,
		URL:   link.URL,
	}, "Link created")
}

// UpdateLink handles PUT /api/links/{id}
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid link id")
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	err = h.links.Update(r.Context(), id, domain.LinkPatch{
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Type,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "Link updated successfully")
}

// DeleteLink handles DELETE /api/links/{id} (soft delete)
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid link id")
		return
	}

	if err := h.links.SoftDelete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "Link deleted successfully")
}

// TrackView handles POST /api/analytics/track-view
// Tracking is non-fatal by contract: a storage failure logs, counts a
// metric, and reports tracked=false with a 200 - it never breaks the page.
func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	var req TrackViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	ref := service.ProfileRef{UserID: req.UserID, Username: req.Username}
	client := ClientInfoFromRequest(r, req.Referrer)

	if err := h.analytics.RecordView(r.Context(), ref, client); err != nil {
		h.logger.Warn("View tracking failed", "error", err)
		respondSuccess(w, http.StatusOK, TrackResponse{Tracked: false}, "View not tracked")
		return
	}

	respondSuccess(w, http.StatusOK, TrackResponse{Tracked: true}, "View tracked")
}

// TrackClick handles POST /api/analytics/track-click
// A missing or inactive link is a hard error (nothing is persisted); only
// infrastructure failures degrade to the soft tracked=false response.
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req TrackClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	ref := service.ProfileRef{UserID: req.UserID, Username: req.Username}
	client := ClientInfoFromRequest(r, req.Referrer)

	err := h.analytics.RecordClick(r.Context(), ref, req.LinkID, client)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, service.ErrMissingLink) {
			respondDomainError(w, err)
			return
		}
		h.logger.Warn("Click tracking failed", "link_id", req.LinkID, "error", err)
		respondSuccess(w, http.StatusOK, TrackResponse{Tracked: false}, "Click not tracked")
		return
	}

	respondSuccess(w, http.StatusOK, TrackResponse{Tracked: true}, "Click tracked")
}

// GetAnalytics handles GET /api/analytics/{userID}
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	report, err := h.analytics.Report(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build analytics report", "user_id", userID, "error", err)
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, toAnalyticsResponse(report), "")
}

// AwardBadge handles POST /api/badges - the insertion primitive for the
// out-of-band badge policy. No scoring happens here.
func (h *Handler) AwardBadge(w http.ResponseWriter, r *http.Request) {
	var req AwardBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	badge, err := h.badges.Award(r.Context(), req.UserID, req.Type, req.Criteria)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, BadgeResponse{
		ID:       badge.ID,
		Type:     badge.Type,
		EarnedAt: badge.EarnedAt,
		Criteria: badge.Criteria,
	}, "Badge awarded")
}

// Upload handles POST /api/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Cap the multipart parse a little above the file ceiling so the
	// size check in the store produces the right error
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	url, err := h.uploader.Save(file, header)
	if err != nil {
		h.logger.Warn("Upload rejected", "filename", header.Filename, "error", err)
		respondDomainError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, UploadResponse{URL: url}, "File uploaded")
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// toPageResponse maps the domain page payload onto the API shape.
func toPageResponse(page *domain.ProfilePage) ProfilePageResponse {
	links := make([]LinkResponse, 0, len(page.Links))
	for _, link := range page.Links {
		links = append(links, LinkResponse{
			ID:             link.ID,
			Title:          link.Title,
			URL:            link.URL,
			Description:    link.Description,
			Image:          link.Image,
			Type:           link.Category,
			Clicks:         link.Clicks,
			IsAutoImported: link.IsAutoImported,
			Source:         link.Source,
			Position:       link.Position,
			CreatedAt:      link.CreatedAt,
		})
	}

	badges := make([]BadgeResponse, 0, len(page.Badges))
	for _, badge := range page.Badges {
		badges = append(badges, BadgeResponse{
			ID:       badge.ID,
			Type:     badge.Type,
			EarnedAt: badge.EarnedAt,
			Criteria: badge.Criteria,
		})
	}

	return ProfilePageResponse{
		User: ProfileResponse{
			ID:           page.Profile.ID,
			Name:         page.Profile.Name,
			Username:     page.Profile.Username,
			Bio:          page.Profile.Bio,
			ProfilePhoto: page.Profile.ProfilePhoto,
			CoverPhoto:   page.Profile.CoverPhoto,
			Mode:         page.Profile.Mode,
			Theme:        page.Profile.Theme,
			IsVerified:   page.Profile.IsVerified,
			Stats: StatsResponse{
				TotalClicks: page.Stats.TotalClicks,
				TotalViews:  page.Stats.TotalViews,
				LinkCount:   page.Stats.LinkCount,
			},
		},
		Links:  links,
		Badges: badges,
	}
}

// toAnalyticsResponse maps the aggregation report onto the API shape.
// Slices are initialized non-nil so empty windows serialize as [].
func toAnalyticsResponse(report *domain.AnalyticsReport) AnalyticsResponse {
	daily := make([]DailyClicksResponse, 0, len(report.DailyClicks))
	for _, d := range report.DailyClicks {
		daily = append(daily, DailyClicksResponse{
			Date:   d.Date.Format("2006-01-02"),
			Clicks: d.Clicks,
		})
	}

	referrers := make([]ReferrerResponse, 0, len(report.TopReferrers))
	for _, rc := range report.TopReferrers {
		referrers = append(referrers, ReferrerResponse{
			Referrer: rc.Referrer,
			Clicks:   rc.Clicks,
		})
	}

	performance := make([]LinkPerformanceResponse, 0, len(report.LinkPerformance))
	for _, lp := range report.LinkPerformance {
		performance = append(performance, LinkPerformanceResponse{
			ID:           lp.LinkID,
			Title:        lp.Title,
			Clicks:       lp.Clicks,
			RecentClicks: lp.RecentClicks,
		})
	}

	return AnalyticsResponse{
		DailyClicks:     daily,
		TopReferrers:    referrers,
		LinkPerformance: performance,
	}
}
