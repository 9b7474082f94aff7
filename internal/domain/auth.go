package domain

import "time"

// Token represents issued access token metadata.
type Token struct {
	Value     string
	UserID    int64
	Role      Role
	ExpiresAt time.Time
}
