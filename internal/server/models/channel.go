package models

import "time"

// ChannelProfile is a user seen as a channel, with subscription facts derived
// at read time.
type ChannelProfile struct {
	ID                       string    `json:"_id"`
	FullName                 string    `json:"fullName"`
	UserName                 string    `json:"username"`
	SubscriberCount          int64     `json:"subscriberCount"`
	ChannelSubscribedToCount int64     `json:"channelSubscribedToCount"`
	IsSubscribed             bool      `json:"isSubscribed"`
	Avatar                   string    `json:"avatar"`
	CoverImage               string    `json:"coverImage"`
	Email                    string    `json:"email"`
	CreatedAt                time.Time `json:"createdAt"`
}

// VideoOwner is the summary of the user that owns a video.
type VideoOwner struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	UserName string `json:"username"`
	Avatar   string `json:"avatar"`
}

// WatchedVideo is one watch-history entry enriched with its owner.
type WatchedVideo struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	VideoFile   string      `json:"videoFile"`
	Thumbnail   string      `json:"thumbnail"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	Owner       *VideoOwner `json:"owner"`
}
