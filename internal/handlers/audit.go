// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"lumina/internal/store"
)

// Audit exposes the login-attempt trail to administrators.
type Audit struct {
	audit *store.AuditStore
}

// NewAudit creates a new Audit handler group.
func NewAudit(audit *store.AuditStore) *Audit {
	return &Audit{audit: audit}
}

// ListByUser returns a user's login attempts, newest first. Accepts an
// optional ?limit= parameter.
func (h *Audit) ListByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	attempts, err := h.audit.ListByUser(id, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

// ListRange returns every attempt between ?from= and ?to= (RFC 3339).
// to defaults to now.
func (h *Audit) ListRange(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing from parameter")
		return
	}

	to := time.Now()
	if q := r.URL.Query().Get("to"); q != "" {
		to, err = time.Parse(time.RFC3339, q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to parameter")
			return
		}
	}

	attempts, err := h.audit.ListRange(from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}
