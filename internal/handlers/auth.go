// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"lumina/internal/middleware"
	"lumina/internal/models"
	"lumina/internal/session"
	"lumina/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions *session.Store
	users    *store.UserStore
	audit    *store.AuditStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, users *store.UserStore, audit *store.AuditStore) *Auth {
	return &Auth{sessions: sessions, users: users, audit: audit}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User     *models.User `json:"user"`
	Needs2FA bool         `json:"needs_2fa"`
	Setup2FA bool         `json:"setup_2fa"`
}

// Repeated-failure alerting on the audit trail. A burst of failed
// attempts against one address is logged at WARN for security review.
const (
	failureAlertWindow    = 15 * time.Minute
	failureAlertThreshold = 5
)

// recordAttempt appends to the login audit trail. The trail is best-effort
// from the request's point of view: a write failure is logged, never
// surfaced to the client.
func (a *Auth) recordAttempt(r *http.Request, user *models.User, email, provider string, success bool) {
	attempt := &models.LoginAttempt{
		Email:     email,
		Provider:  provider,
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
	if user != nil {
		attempt.UserID = &user.ID
	}
	if err := a.audit.RecordLogin(attempt); err != nil {
		slog.Error("login audit write failed", "error", err)
		return
	}

	if success {
		return
	}
	failures, err := a.audit.RecentFailures(email, failureAlertWindow)
	if err != nil {
		slog.Error("failure count lookup failed", "error", err)
		return
	}
	if failures >= failureAlertThreshold {
		slog.Warn("repeated login failures",
			"email", email,
			"ip", attempt.IP,
			"failures", failures,
			"window", failureAlertWindow.String(),
		)
	}
}

// Login checks credentials, records the attempt, and opens a session.
// Both unknown accounts and bad passwords answer identically so the
// endpoint does not leak which addresses exist.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user == nil || !a.users.CheckPassword(user, req.Password) {
		a.recordAttempt(r, user, req.Email, "password", false)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if !user.IsActive() {
		a.recordAttempt(r, user, req.Email, "password", false)
		writeError(w, http.StatusForbidden, "account is not active")
		return
	}

	a.recordAttempt(r, user, req.Email, "password", true)

	// TwoFADone starts false; the session is only fully usable after the
	// TOTP step when the account has 2FA enabled.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		TwoFADone:   !user.TOTPEnabled && !user.Needs2FASetup(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		User:     user,
		Needs2FA: user.TOTPEnabled,
		Setup2FA: user.Needs2FASetup(),
	})
}

// TwoFASetup generates a TOTP secret for the logged-in user and returns
// the otpauth URL plus a base64 PNG QR code for enrollment.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Lumina",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := a.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
		"qr_png": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type verifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify validates the TOTP code and completes authentication.
// On first-time setup it also flips totp_enabled on the account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user.TOTPSecret == nil {
		writeError(w, http.StatusUnprocessableEntity, "two-factor setup has not started")
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		a.recordAttempt(r, user, user.Email, "totp", false)
		writeError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.users.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	a.recordAttempt(r, user, user.Email, "totp", true)

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// Me returns the current user's account.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
