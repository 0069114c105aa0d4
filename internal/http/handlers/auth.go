package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/geocoder89/hospitalhub/internal/auth"
	"github.com/geocoder89/hospitalhub/internal/config"
	"github.com/geocoder89/hospitalhub/internal/domain/identity"
	"github.com/geocoder89/hospitalhub/internal/domain/patient"
	"github.com/geocoder89/hospitalhub/internal/observability"
	"github.com/geocoder89/hospitalhub/internal/redisclient"
	"github.com/geocoder89/hospitalhub/internal/repo/postgres"
	"github.com/geocoder89/hospitalhub/internal/security"
)

const refreshCookieName = "refresh_token"

// Refresh tokens are only ever presented to the token endpoints.
const refreshCookiePath = "/auth"

type IdentityByEmailGetter interface {
	GetByEmail(ctx context.Context, role identity.Role, email string) (identity.Identity, error)
}

type PatientCreator interface {
	Create(ctx context.Context, p patient.Patient) error
}

type AdminCreator interface {
	Create(ctx context.Context, ident identity.Identity) error
}

// RefreshSessionStore is the transactional surface refresh rotation needs.
type RefreshSessionStore interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, tx pgx.Tx, row postgres.RefreshTokenRow) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (postgres.RefreshTokenRow, error)
	Revoke(ctx context.Context, tx pgx.Tx, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, tx pgx.Tx, userID string) error
}

type AuthHandler struct {
	identities IdentityByEmailGetter
	patients   PatientCreator
	admins     AdminCreator
	tokens     *auth.Manager
	sessions   RefreshSessionStore
	throttle   *redisclient.LoginThrottle
	prom       *observability.Prom

	cookieSecure   bool
	refreshTTLSecs int
}

func NewAuthHandler(
	identities IdentityByEmailGetter,
	patients PatientCreator,
	admins AdminCreator,
	tokens *auth.Manager,
	sessions RefreshSessionStore,
	throttle *redisclient.LoginThrottle,
	prom *observability.Prom,
	cfg config.Config,
) *AuthHandler {
	return &AuthHandler{
		identities:     identities,
		patients:       patients,
		admins:         admins,
		tokens:         tokens,
		sessions:       sessions,
		throttle:       throttle,
		prom:           prom,
		cookieSecure:   cfg.Env == "prod",
		refreshTTLSecs: int(cfg.RefreshTTL().Seconds()),
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AdminRegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required,min=1,max=50"`
	LastName    string `json:"lastName" binding:"required,min=1,max=50"`
	Email       string `json:"email" binding:"required,email,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"required,min=5,max=20"`
	Gender      string `json:"gender" binding:"required,max=10"`
	Password    string `json:"password" binding:"required,min=8"`
}

func (h *AuthHandler) RegisterPatient(ctx *gin.Context) {
	var req patient.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not process password")
		return
	}

	p := patient.NewFromRegisterRequest(req, hash)

	err = h.patients.Create(ctx.Request.Context(), p)

	if err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			RespondConflict(ctx, "email_taken", "Email is already registered for this account type.")
			return
		}

		slog.Error("patient_register_failed", "error", err)
		RespondInternal(ctx, "Could not create account")
		return
	}

	accessToken, ok := h.issueSession(ctx, p.Identity)

	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"accessToken": accessToken,
		"patient":     p,
	})
}

func (h *AuthHandler) RegisterAdmin(ctx *gin.Context) {
	var req AdminRegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not process password")
		return
	}

	now := time.Now().UTC()

	ident := identity.Identity{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        identity.NormalizeEmail(req.Email),
		PhoneNumber:  req.PhoneNumber,
		Gender:       req.Gender,
		ImageFile:    identity.DefaultImage,
		PasswordHash: hash,
		Role:         identity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = h.admins.Create(ctx.Request.Context(), ident)

	if err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			RespondConflict(ctx, "email_taken", "Email is already registered for this account type.")
			return
		}

		slog.Error("admin_register_failed", "error", err)
		RespondInternal(ctx, "Could not create account")
		return
	}

	accessToken, ok := h.issueSession(ctx, ident)

	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"accessToken": accessToken,
		"admin":       ident,
	})
}

func (h *AuthHandler) LoginPatient(ctx *gin.Context) {
	h.login(ctx, identity.RolePatient)
}

func (h *AuthHandler) LoginDoctor(ctx *gin.Context) {
	h.login(ctx, identity.RoleDoctor)
}

func (h *AuthHandler) LoginAdmin(ctx *gin.Context) {
	h.login(ctx, identity.RoleAdmin)
}

// login is shared by the three entry points; the role scopes the lookup so a
// patient's credentials can never open a doctor or admin session.
func (h *AuthHandler) login(ctx *gin.Context, role identity.Role) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email := identity.NormalizeEmail(req.Email)

	if !h.throttle.Allow(ctx.Request.Context(), string(role)+":"+email) {
		h.countLogin(role, "throttled")
		RespondTooManyRequests(ctx, "Too many login attempts, try again later.")
		return
	}

	ident, err := h.identities.GetByEmail(ctx.Request.Context(), role, email)

	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			h.countLogin(role, "invalid")
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password.")
			return
		}

		slog.Error("login_lookup_failed", "role", role, "error", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	if !security.CheckPassword(ident.PasswordHash, req.Password) {
		h.countLogin(role, "invalid")
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password.")
		return
	}

	accessToken, ok := h.issueSession(ctx, ident)

	if !ok {
		return
	}

	h.countLogin(role, "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"user":        ident,
	})
}

// Refresh rotates the refresh token: the presented token is revoked and a
// replacement is minted in the same transaction, so a token can be redeemed
// exactly once even under concurrent requests.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err != nil || raw == "" {
		RespondUnAuthorized(ctx, "missing_refresh", "No refresh token.")
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Refresh token is invalid or expired.")
		return
	}

	reqCtx := ctx.Request.Context()

	tx, err := h.sessions.BeginTx(reqCtx)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	defer func() { _ = tx.Rollback(reqCtx) }()

	row, err := h.sessions.GetForUpdate(reqCtx, tx, claims.JTI)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Refresh token is invalid or expired.")
		return
	}

	if row.RevokedAt != nil {
		// Reuse of a rotated token means the token leaked somewhere; kill the
		// whole session family.
		_ = h.sessions.RevokeAllForUser(reqCtx, tx, row.UserID)
		_ = tx.Commit(reqCtx)

		slog.Warn("refresh_token_reuse", "user_id", row.UserID, "jti", claims.JTI)
		h.clearRefreshCookie(ctx)
		RespondUnAuthorized(ctx, "invalid_refresh", "Refresh token is invalid or expired.")
		return
	}

	if time.Now().UTC().After(row.ExpiresAt) || row.TokenHash != h.tokens.HashRefreshToken(raw) {
		RespondUnAuthorized(ctx, "invalid_refresh", "Refresh token is invalid or expired.")
		return
	}

	newRaw, newJTI, expiresAt, err := h.tokens.GenerateRefreshToken(claims.UserID, claims.Email, claims.Role)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	if err = h.sessions.Revoke(reqCtx, tx, claims.JTI, &newJTI); err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	err = h.sessions.Create(reqCtx, tx, postgres.RefreshTokenRow{
		ID:        newJTI,
		UserID:    claims.UserID,
		TokenHash: h.tokens.HashRefreshToken(newRaw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	if err = tx.Commit(reqCtx); err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(claims.UserID, claims.Email, claims.Role)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	h.setRefreshCookie(ctx, newRaw)

	ctx.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err == nil && raw != "" {
		if claims, verr := h.tokens.VerifyRefreshToken(raw); verr == nil {
			reqCtx := ctx.Request.Context()

			tx, terr := h.sessions.BeginTx(reqCtx)

			if terr == nil {
				defer func() { _ = tx.Rollback(reqCtx) }()

				if rerr := h.sessions.Revoke(reqCtx, tx, claims.JTI, nil); rerr == nil {
					_ = tx.Commit(reqCtx)
				}
			}
		}
	}

	// Logout always succeeds from the client's point of view.
	h.clearRefreshCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *AuthHandler) issueSession(ctx *gin.Context, ident identity.Identity) (string, bool) {
	accessToken, err := h.tokens.GenerateAccessToken(ident.ID, ident.Email, string(ident.Role))

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return "", false
	}

	refreshRaw, jti, expiresAt, err := h.tokens.GenerateRefreshToken(ident.ID, ident.Email, string(ident.Role))

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return "", false
	}

	reqCtx := ctx.Request.Context()

	tx, err := h.sessions.BeginTx(reqCtx)

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return "", false
	}

	defer func() { _ = tx.Rollback(reqCtx) }()

	err = h.sessions.Create(reqCtx, tx, postgres.RefreshTokenRow{
		ID:        jti,
		UserID:    ident.ID,
		TokenHash: h.tokens.HashRefreshToken(refreshRaw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return "", false
	}

	if err = tx.Commit(reqCtx); err != nil {
		RespondInternal(ctx, "Could not start session")
		return "", false
	}

	h.setRefreshCookie(ctx, refreshRaw)

	return accessToken, true
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    raw,
		Path:     refreshCookiePath,
		MaxAge:   h.refreshTTLSecs,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) countLogin(role identity.Role, result string) {
	if h.prom == nil {
		return
	}

	h.prom.LoginsTotal.WithLabelValues(string(role), result).Inc()
}
