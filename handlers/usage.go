package handlers

import "sync"

// UserUsage counts what a user has asked the bot to do since startup.
type UserUsage struct {
	Images      int
	Conversions int
}

// Usage keeps per-user counters in memory. Counts reset on restart.
type Usage struct {
	mu    sync.Mutex
	users map[string]*UserUsage
}

func NewUsage() *Usage {
	return &Usage{users: make(map[string]*UserUsage)}
}

func (u *Usage) entry(userID string) *UserUsage {
	e, ok := u.users[userID]
	if !ok {
		e = &UserUsage{}
		u.users[userID] = e
	}
	return e
}

// AddImage records a finished generation and returns the user's new total.
func (u *Usage) AddImage(userID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	e := u.entry(userID)
	e.Images++
	return e.Images
}

// AddConversion records a /convert call and returns the user's new total.
func (u *Usage) AddConversion(userID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	e := u.entry(userID)
	e.Conversions++
	return e.Conversions
}

func (u *Usage) Get(userID string) UserUsage {
	u.mu.Lock()
	defer u.mu.Unlock()
	if e, ok := u.users[userID]; ok {
		return *e
	}
	return UserUsage{}
}
