package handlers

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/dealer-leads/internal/infra/http/middleware"
	"github.com/xavierca1/dealer-leads/internal/usecase"
)

type LeadHandler struct {
	createUC       *usecase.CreateLeadUseCase
	changeStatusUC *usecase.ChangeStatusUseCase
	addCommentUC   *usecase.AddCommentUseCase
	queryUC        *usecase.LeadQueryUseCase
	rateLimiter    *RateLimiter
	logger         *slog.Logger
}

func NewLeadHandler(
	createUC *usecase.CreateLeadUseCase,
	changeStatusUC *usecase.ChangeStatusUseCase,
	addCommentUC *usecase.AddCommentUseCase,
	queryUC *usecase.LeadQueryUseCase,
	rateLimiter *RateLimiter,
	logger *slog.Logger,
) *LeadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadHandler{
		createUC:       createUC,
		changeStatusUC: changeStatusUC,
		addCommentUC:   addCommentUC,
		queryUC:        queryUC,
		rateLimiter:    rateLimiter,
		logger:         logger,
	}
}

// Create handles POST /leads.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Code:    "RATE_LIMITED",
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadJSON(w, err)
		return
	}
	input.ActorID = middleware.ViewerID(r.Context())

	lead, err := h.createUC.Execute(r.Context(), input)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

// List handles GET /leads?q=&status=.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.queryUC.List(r.Context(), usecase.ListLeadsInput{
		ViewerID: middleware.ViewerID(r.Context()),
		Query:    r.URL.Query().Get("q"),
		Status:   r.URL.Query().Get("status"),
	})
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

// Get handles GET /leads/{id}.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.queryUC.Get(r.Context(), middleware.ViewerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// ChangeStatus handles POST /leads/{id}/status.
func (h *LeadHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChangeStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadJSON(w, err)
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.ActorID = middleware.ViewerID(r.Context())

	out, err := h.changeStatusUC.Execute(r.Context(), input)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AddComment handles POST /leads/{id}/comments.
func (h *LeadHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var input usecase.AddCommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadJSON(w, err)
		return
	}
	input.LeadID = chi.URLParam(r, "id")
	input.ActorID = middleware.ViewerID(r.Context())

	lead, err := h.addCommentUC.Execute(r.Context(), input)
	if err != nil {
		fail(h.logger, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// first hop is the client
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimiter is a fixed-window per-IP counter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := rl.now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
