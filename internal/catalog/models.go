package catalog

import (
	"time"

	"varologs/internal/media"
)

// DefaultAvatarColor is assigned to users created without one.
const DefaultAvatarColor = "#6366f1"

// DefaultItemLimit caps item listings when the caller gives no limit.
const DefaultItemLimit = 100

// ReviewStatus tracks a user's progress through an item.
type ReviewStatus string

const (
	StatusPending    ReviewStatus = "pending"
	StatusInProgress ReviewStatus = "in_progress"
	StatusCompleted  ReviewStatus = "completed"
	StatusAbandoned  ReviewStatus = "abandoned"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusAbandoned:
		return true
	}
	return false
}

// User is a catalog member. There are no passwords; a name is the identity.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AvatarColor string    `json:"avatar_color"`
	CreatedAt   time.Time `json:"created_at"`
}

// Details holds the optional, type-specific attributes of an item.
type Details struct {
	Platform    *string `json:"platform,omitempty"`
	Developer   *string `json:"developer,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	DurationMin *int    `json:"duration_min,omitempty" validate:"omitempty,min=0"`
	Pages       *int    `json:"pages,omitempty" validate:"omitempty,min=0"`
	Episodes    *int    `json:"episodes,omitempty" validate:"omitempty,min=0"`
	Seasons     *int    `json:"seasons,omitempty" validate:"omitempty,min=0"`
	ISBN        *string `json:"isbn,omitempty"`
}

// Item is the shared master record for one work.
type Item struct {
	ID        int64      `json:"id"`
	Type      media.Type `json:"type"`
	Title     string     `json:"title"`
	Year      *int       `json:"year"`
	Creator   *string    `json:"creator"`
	Genre     *string    `json:"genre"`
	Synopsis  *string    `json:"synopsis"`
	CoverURL  *string    `json:"cover_url"`
	CreatedBy *int64     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	Details
	Metadata *string `json:"metadata,omitempty"`
	Status   *string `json:"status,omitempty"`

	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int      `json:"review_count"`
}

// ItemDetail is an item together with every review of it.
type ItemDetail struct {
	Item
	Reviews []Review `json:"reviews"`
}

// ItemInput carries the writable fields of an item.
type ItemInput struct {
	Type      media.Type `json:"type" validate:"required,mediatype"`
	Title     string     `json:"title" validate:"required,notblank,max=300"`
	Year      *int       `json:"year" validate:"omitempty,min=0,max=3000"`
	Creator   *string    `json:"creator"`
	Genre     *string    `json:"genre"`
	Synopsis  *string    `json:"synopsis"`
	CoverURL  *string    `json:"cover_url" validate:"omitempty,max=2048"`
	CreatedBy *int64     `json:"created_by"`
	Details
	Metadata *string `json:"metadata"`
	Status   *string `json:"status"`
}

// ItemFilter narrows an item listing. Zero values mean no filter.
type ItemFilter struct {
	Type   media.Type
	UserID *int64
	Status ReviewStatus
	Search string
	Limit  int
	Offset int
}

// Review is one user's rating and progress on an item.
type Review struct {
	ID          int64        `json:"id"`
	ItemID      int64        `json:"item_id"`
	UserID      int64        `json:"user_id"`
	Rating      *float64     `json:"rating"`
	Status      ReviewStatus `json:"status"`
	ReviewText  *string      `json:"review_text"`
	UpdatedAt   time.Time    `json:"updated_at"`
	UserName    string       `json:"user_name"`
	AvatarColor string       `json:"avatar_color"`
}

// ReviewInput carries the writable fields of a review.
type ReviewInput struct {
	UserID     int64        `json:"user_id" validate:"required,gt=0"`
	Rating     *float64     `json:"rating" validate:"omitempty,min=0,max=10"`
	Status     ReviewStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed abandoned"`
	ReviewText *string      `json:"review_text"`
}

// List is a named, user-owned collection of items.
type List struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UserName    string    `json:"user_name,omitempty"`
	ItemCount   int       `json:"item_count"`
}

// ListEntry is an item as it appears in a list.
type ListEntry struct {
	Item
	AddedAt time.Time `json:"added_at"`
}

// ListDetail is a list together with its items, newest first.
type ListDetail struct {
	List
	Items []ListEntry `json:"items"`
}

// ListInput creates a list. A nil IsPublic means public.
type ListInput struct {
	UserID      int64   `json:"user_id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// ListUpdate replaces a list's name and description. A nil IsPublic leaves
// visibility unchanged.
type ListUpdate struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// TypeCount is the number of items of one type.
type TypeCount struct {
	Type  media.Type `json:"type"`
	Count int        `json:"count"`
}

// UserStats summarizes one user's reviews.
type UserStats struct {
	Reviewed  int      `json:"reviewed"`
	Completed int      `json:"completed"`
	AvgRating *float64 `json:"avgRating"`
}

// Stats summarizes the whole catalog.
type Stats struct {
	TotalItems  int         `json:"totalItems"`
	TotalUsers  int         `json:"totalUsers"`
	ItemsByType []TypeCount `json:"itemsByType"`
	UserStats   *UserStats  `json:"userStats"`
}
