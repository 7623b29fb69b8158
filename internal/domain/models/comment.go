package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ImageID   string    `db:"image_id" json:"imageId"`
	UserID    string    `db:"user_id" json:"userId"`
	UserName  string    `db:"user_name" json:"userName"`
	UserRole  Role      `db:"user_role" json:"userRole"`
	Text      string    `db:"text" json:"text"`
	Timestamp string    `db:"timestamp" json:"timestamp"`
}

func NewComment(imageID, userID, userName string, userRole Role, text string, now time.Time) *Comment {
	return &Comment{
		ID:        uuid.New(),
		ImageID:   imageID,
		UserID:    userID,
		UserName:  userName,
		UserRole:  userRole,
		Text:      text,
		Timestamp: FormatTime(now),
	}
}
