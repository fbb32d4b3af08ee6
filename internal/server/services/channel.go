package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/vidkeeper/internal/common"
	"github.com/dmitrijs2005/vidkeeper/internal/logging"
	"github.com/dmitrijs2005/vidkeeper/internal/server/graph"
	"github.com/dmitrijs2005/vidkeeper/internal/server/models"
	"github.com/dmitrijs2005/vidkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ChannelService answers social-graph questions derived at read time from
// users, subscriptions and videos.
type ChannelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewChannelService constructs a ChannelService.
func NewChannelService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ChannelService {
	return &ChannelService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "channel"),
	}
}

func channelProfilePipeline(viewerID, username string) *graph.Pipeline {
	return graph.From("users", "u").
		Match("u.username", username).
		Size(graph.Size{As: "subscriber_count", From: "subscriptions", LocalField: "u.id", ForeignField: "channel_id"}).
		Size(graph.Size{As: "channel_subscribed_to_count", From: "subscriptions", LocalField: "u.id", ForeignField: "subscriber_id"}).
		In(graph.In{
			As: "is_subscribed", From: "subscriptions", LocalField: "u.id",
			ForeignField: "channel_id", MemberField: "subscriber_id", Value: viewerID,
		}).
		Project("u.id", "u.full_name", "u.username", "subscriber_count", "channel_subscribed_to_count",
			"is_subscribed", "u.avatar", "u.cover_image", "u.email", "u.created_at")
}

// ChannelProfile returns the channel view of username as seen by viewerID.
// An empty viewerID is an anonymous viewer, never subscribed.
func (s *ChannelService) ChannelProfile(ctx context.Context, viewerID, username string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, common.NewError(common.ErrorBadRequest, "username is missing")
	}

	// a viewer id that is not a uuid cannot be subscribed to anything
	if _, err := uuid.Parse(viewerID); err != nil {
		viewerID = ""
	}

	q, err := channelProfilePipeline(viewerID, username).Build()
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, "error building channel query", err)
	}

	var channels []models.ChannelProfile
	err = s.repomanager.Users(s.db).Aggregate(ctx, q, func(row graph.Row) error {
		var c models.ChannelProfile
		if err := row.Scan(&c.ID, &c.FullName, &c.UserName, &c.SubscriberCount, &c.ChannelSubscribedToCount,
			&c.IsSubscribed, &c.Avatar, &c.CoverImage, &c.Email, &c.CreatedAt); err != nil {
			return err
		}
		channels = append(channels, c)
		return nil
	})
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, "error fetching channel", err)
	}

	if len(channels) == 0 {
		return nil, common.NewError(common.ErrorNotFound, "channel does not exist")
	}

	return &channels[0], nil
}

func watchHistoryPipeline(userID string) *graph.Pipeline {
	return graph.From("users", "u").
		Match("u.id", userID).
		Unwind("u.watch_history", "wh").
		Lookup(graph.Lookup{From: "videos", As: "v", LocalField: "wh.ref", ForeignField: "id"}).
		First(graph.First{
			From: "users", As: "o", LocalField: "v.owner_id", ForeignField: "id",
			Fields: []string{"id", "full_name", "username", "avatar"},
		}).
		Project("v.id", "v.title", "v.description", "v.video_file", "v.thumbnail", "v.duration",
			"v.views", "v.is_published", "v.created_at", "o.id", "o.full_name", "o.username", "o.avatar").
		Sort("wh.position")
}

// WatchHistory returns the videos userID watched, in recorded order, each
// with a summary of its owner. A missing user has an empty history.
func (s *ChannelService) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	history := []models.WatchedVideo{}

	if _, err := uuid.Parse(userID); err != nil {
		return history, nil
	}

	q, err := watchHistoryPipeline(userID).Build()
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, "error building watch history query", err)
	}

	err = s.repomanager.Users(s.db).Aggregate(ctx, q, func(row graph.Row) error {
		var v models.WatchedVideo
		var ownerID, ownerName, ownerUser, ownerAvatar sql.NullString
		if err := row.Scan(&v.ID, &v.Title, &v.Description, &v.VideoFile, &v.Thumbnail, &v.Duration,
			&v.Views, &v.IsPublished, &v.CreatedAt, &ownerID, &ownerName, &ownerUser, &ownerAvatar); err != nil {
			return err
		}
		if ownerID.Valid {
			v.Owner = &models.VideoOwner{
				ID:       ownerID.String,
				FullName: ownerName.String,
				UserName: ownerUser.String,
				Avatar:   ownerAvatar.String,
			}
		}
		history = append(history, v)
		return nil
	})
	if err != nil {
		return nil, common.WrapError(common.ErrorInternal, "error fetching watch history", err)
	}

	return history, nil
}
