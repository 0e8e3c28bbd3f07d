package services

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/zhenyapindos/TaskManagerService/models"
)

// NotificationCache is the process-wide index of notifications believed
// unread, keyed by user id. It is a write-through mirror of the persisted
// notification log, not a source of truth: every persisted insert and every
// bulk acknowledge must update it in the same logical operation.
//
// The map is guarded by a mutex. The original design shared an unguarded
// map across requests; the lock is a deliberate strengthening.
type NotificationCache struct {
	mu     sync.RWMutex
	unread map[string][]models.Notification
}

func NewNotificationCache() *NotificationCache {
	return &NotificationCache{
		unread: make(map[string][]models.Notification),
	}
}

// Add appends a notification to the user's unread list, creating the entry
// if absent. Adding the same notification id twice is a no-op.
func (c *NotificationCache) Add(userID string, notification models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.unread[userID] {
		if existing.ID == notification.ID {
			return
		}
	}

	c.unread[userID] = append(c.unread[userID], notification)
}

// RemoveMany drops every notification whose id is in ids from the user's
// list. When the list empties the user's entry is removed entirely, so the
// map does not accumulate empty lists.
func (c *NotificationCache) RemoveMany(userID string, ids []uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, ok := c.unread[userID]
	if !ok {
		return
	}

	drop := make(map[uint]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := list[:0]
	for _, n := range list {
		if !drop[n.ID] {
			kept = append(kept, n)
		}
	}

	if len(kept) == 0 {
		delete(c.unread, userID)
		return
	}
	c.unread[userID] = kept
}

// HasUnread reports whether the user has a non-empty entry. This backs the
// notification poll endpoint, so it never touches the persisted store.
func (c *NotificationCache) HasUnread(userID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.unread[userID]) > 0
}

// GetAll returns a copy of the user's cached unread list, empty when the
// user has no entry. This is the cache's view only; the persisted log is
// queried separately for the authoritative history.
func (c *NotificationCache) GetAll(userID string) []models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.unread[userID]
	out := make([]models.Notification, len(list))
	copy(out, list)
	return out
}

// Warm loads all unread notifications from the persisted log. Called once
// at startup so a restart does not silently lose unread state; the original
// design skipped this and reset every user to "no unread" on restart.
func (c *NotificationCache) Warm(db *gorm.DB) error {
	var notifications []models.Notification
	if err := db.Where("is_read = ?", false).Order("id").Find(&notifications).Error; err != nil {
		return fmt.Errorf("failed to load unread notifications: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.unread = make(map[string][]models.Notification)
	for _, n := range notifications {
		c.unread[n.UserID] = append(c.unread[n.UserID], n)
	}
	return nil
}
