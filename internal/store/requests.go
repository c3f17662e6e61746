package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Request statuses.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// ModeRequest is a user's pending request to switch the bot's share mode.
// The user and permission model live in the external dashboard; this
// store only tracks the request lifecycle.
type ModeRequest struct {
	RequestedMode string    `json:"requested_mode"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
}

// ModeRequests is a JSON-file-backed map of user name to their latest
// mode-change request.
type ModeRequests struct {
	mu   sync.Mutex
	path string
}

// NewModeRequests creates a request store persisted at path.
func NewModeRequests(path string) *ModeRequests {
	return &ModeRequests{path: path}
}

// Submit records a pending request for user, replacing any previous one.
func (r *ModeRequests) Submit(user, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	requests, err := r.load()
	if err != nil {
		return err
	}
	requests[user] = ModeRequest{
		RequestedMode: mode,
		Timestamp:     time.Now().UTC(),
		Status:        RequestPending,
	}
	return r.save(requests)
}

// Resolve marks user's request approved or rejected. Unknown users or
// already-resolved requests are an error.
func (r *ModeRequests) Resolve(user string, approve bool) (*ModeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	requests, err := r.load()
	if err != nil {
		return nil, err
	}
	req, ok := requests[user]
	if !ok {
		return nil, fmt.Errorf("no mode request for user %q", user)
	}
	if req.Status != RequestPending {
		return nil, fmt.Errorf("mode request for user %q already %s", user, req.Status)
	}

	if approve {
		req.Status = RequestApproved
	} else {
		req.Status = RequestRejected
	}
	requests[user] = req
	if err := r.save(requests); err != nil {
		return nil, err
	}
	return &req, nil
}

// Pending returns all requests still awaiting a decision.
func (r *ModeRequests) Pending() (map[string]ModeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	requests, err := r.load()
	if err != nil {
		return nil, err
	}
	pending := make(map[string]ModeRequest)
	for user, req := range requests {
		if req.Status == RequestPending {
			pending[user] = req
		}
	}
	return pending, nil
}

// Get returns user's latest request, if any.
func (r *ModeRequests) Get(user string) (*ModeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	requests, err := r.load()
	if err != nil {
		return nil, err
	}
	req, ok := requests[user]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *ModeRequests) load() (map[string]ModeRequest, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return make(map[string]ModeRequest), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mode requests: %w", err)
	}

	requests := make(map[string]ModeRequest)
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode mode requests: %w", err)
	}
	return requests, nil
}

func (r *ModeRequests) save(requests map[string]ModeRequest) error {
	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mode requests: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mode requests: %w", err)
	}
	return nil
}
