package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// fakeWalletService is an in-memory stand-in for the remote wallet service.
// A request becomes approved two polls after its authorization URL is opened.
type fakeWalletService struct {
	mu       sync.RWMutex
	baseURL  string
	requests map[string]*storedRequest
}

type storedRequest struct {
	record     requestRecord
	authorized bool
	polls      int
}

type requestRecord struct {
	ID               string           `json:"id"`
	Status           string           `json:"status"`
	AuthFlowTriggers authFlowTriggers `json:"auth_flow_triggers"`
	Grants           []grantRecord    `json:"grants,omitempty"`
	ReferenceID      string           `json:"reference_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

type authFlowTriggers struct {
	MobileURL   string    `json:"mobile_url"`
	RefreshesAt time.Time `json:"refreshes_at"`
}

type grantRecord struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type createPayload struct {
	IdempotencyKey string `json:"idempotency_key"`
	Request        struct {
		ReferenceID string `json:"reference_id"`
	} `json:"request"`
}

func newFakeWalletService() *fakeWalletService {
	return &fakeWalletService{requests: make(map[string]*storedRequest)}
}

func (s *fakeWalletService) routes(r chi.Router) {
	r.Post("/customer-request/v1/requests", s.handleCreate)
	r.Patch("/customer-request/v1/requests/{id}", s.handleUpdate)
	r.Get("/customer-request/v1/requests/{id}", s.handleRetrieve)
	r.Get("/authorize/{id}", s.handleAuthorize)
}

func (s *fakeWalletService) setBaseURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = u
}

func (s *fakeWalletService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	id := uuid.NewString()
	now := time.Now().UTC()
	record := requestRecord{
		ID:     id,
		Status: "pending",
		AuthFlowTriggers: authFlowTriggers{
			MobileURL:   s.baseURL + "/authorize/" + id,
			RefreshesAt: now.Add(5 * time.Minute),
		},
		ReferenceID: payload.Request.ReferenceID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}
	s.requests[id] = &storedRequest{record: record}
	s.mu.Unlock()

	writeEnvelope(w, http.StatusCreated, record)
}

func (s *fakeWalletService) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	stored, ok := s.requests[id]
	if ok {
		stored.record.AuthFlowTriggers.RefreshesAt = time.Now().UTC().Add(5 * time.Minute)
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeEnvelope(w, http.StatusOK, stored.record)
}

func (s *fakeWalletService) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	stored, ok := s.requests[id]
	if ok && stored.authorized {
		stored.polls++
		if stored.polls >= 2 && stored.record.Status != "approved" {
			stored.record.Status = "approved"
			stored.record.Grants = []grantRecord{{ID: uuid.NewString(), Type: "one_time"}}
		}
	}
	var record requestRecord
	if ok {
		record = stored.record
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeEnvelope(w, http.StatusOK, record)
}

func (s *fakeWalletService) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	stored, ok := s.requests[id]
	if ok {
		stored.authorized = true
		stored.record.Status = "pending"
	}
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("authorized"))
}

func writeEnvelope(w http.ResponseWriter, status int, record requestRecord) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]requestRecord{"request": record})
}
