package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
)

// NotificationState is the unread counter shown in the header
type NotificationState struct {
	Unread    int       `json:"unread"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NotificationService keeps the unread notification count.
// A failed refresh keeps the last known count.
type NotificationService struct {
	client *api.Client
	tokens api.TokenSource

	mu    sync.Mutex
	state NotificationState
}

func NewNotificationService(client *api.Client, tokens api.TokenSource) *NotificationService {
	return &NotificationService{client: client, tokens: tokens}
}

// unreadCount accepts {"count": n}, {"unread": n} or a bare number
type unreadCount int

func (u *unreadCount) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*u = unreadCount(n)
		return nil
	}
	var obj struct {
		Count  *int `json:"count"`
		Unread *int `json:"unread"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.Count != nil:
		*u = unreadCount(*obj.Count)
	case obj.Unread != nil:
		*u = unreadCount(*obj.Unread)
	default:
		return fmt.Errorf("unread count missing from %s", data)
	}
	return nil
}

// Refresh asks the backend for the unread count. Logged out, the count is zero.
func (n *NotificationService) Refresh(ctx context.Context) error {
	if n.tokens.Token() == "" {
		n.mu.Lock()
		n.state = NotificationState{}
		n.mu.Unlock()
		return nil
	}

	var count unreadCount
	err := n.client.Get(ctx, "/notifications/unread-count", &count)

	n.mu.Lock()
	defer n.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		n.state.Error = ErrorMessage(err)
		return err
	}
	n.state = NotificationState{Unread: int(count), UpdatedAt: time.Now()}
	return nil
}

// State returns the last known counter
func (n *NotificationService) State() NotificationState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}
