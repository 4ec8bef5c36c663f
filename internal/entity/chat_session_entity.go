package entity

import (
	"time"
)

// ChatSession is a troubleshooting conversation. The id is generated by the
// client and reused across visits, so it is a plain string rather than a
// server-side uuid.
type ChatSession struct {
	Id        string
	Title     string
	Issue     string
	Escalated bool
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
