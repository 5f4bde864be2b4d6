package unread

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisTracker keeps per-user unread state in Redis sets and implements all
// three counter interfaces. The four topic categories are read in one
// pipelined round trip.
type RedisTracker struct {
	redis redis.UniversalClient
}

// NewRedisTracker returns a tracker backed by the given Redis client.
func NewRedisTracker(redisClient redis.UniversalClient) *RedisTracker {
	return &RedisTracker{redis: redisClient}
}

// TopicFlags mark which unread categories a topic belongs to besides the total.
type TopicFlags struct {
	New       bool
	Watched   bool
	Unreplied bool
}

func (t *RedisTracker) TopicCounts(ctx context.Context, uid int64) (TopicCounts, error) {
	pipe := t.redis.Pipeline()
	total := pipe.SCard(ctx, topicKey(uid, ""))
	fresh := pipe.SCard(ctx, topicKey(uid, "new"))
	watched := pipe.SCard(ctx, topicKey(uid, "watched"))
	unreplied := pipe.SCard(ctx, topicKey(uid, "unreplied"))
	if _, err := pipe.Exec(ctx); err != nil {
		return TopicCounts{}, fmt.Errorf("unread: topic counts: %w", err)
	}
	return TopicCounts{
		Total:     total.Val(),
		New:       fresh.Val(),
		Watched:   watched.Val(),
		Unreplied: unreplied.Val(),
	}, nil
}

func (t *RedisTracker) ChatCount(ctx context.Context, uid int64) (int64, error) {
	n, err := t.redis.SCard(ctx, chatKey(uid)).Result()
	if err != nil {
		return 0, fmt.Errorf("unread: chat count: %w", err)
	}
	return n, nil
}

func (t *RedisTracker) NotificationCount(ctx context.Context, uid int64) (int64, error) {
	n, err := t.redis.SCard(ctx, notificationKey(uid)).Result()
	if err != nil {
		return 0, fmt.Errorf("unread: notification count: %w", err)
	}
	return n, nil
}

// MarkTopicUnread records tid as unread for uid in the total set and in each
// flagged category set.
func (t *RedisTracker) MarkTopicUnread(ctx context.Context, uid, tid int64, flags TopicFlags) error {
	pipe := t.redis.TxPipeline()
	pipe.SAdd(ctx, topicKey(uid, ""), tid)
	if flags.New {
		pipe.SAdd(ctx, topicKey(uid, "new"), tid)
	}
	if flags.Watched {
		pipe.SAdd(ctx, topicKey(uid, "watched"), tid)
	}
	if flags.Unreplied {
		pipe.SAdd(ctx, topicKey(uid, "unreplied"), tid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unread: mark topic: %w", err)
	}
	return nil
}

// MarkTopicRead removes tid from every category set for uid.
func (t *RedisTracker) MarkTopicRead(ctx context.Context, uid, tid int64) error {
	pipe := t.redis.TxPipeline()
	for _, cat := range []string{"", "new", "watched", "unreplied"} {
		pipe.SRem(ctx, topicKey(uid, cat), tid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unread: mark topic read: %w", err)
	}
	return nil
}

// MarkChatUnread records roomID as having unread messages for uid.
func (t *RedisTracker) MarkChatUnread(ctx context.Context, uid, roomID int64) error {
	if err := t.redis.SAdd(ctx, chatKey(uid), roomID).Err(); err != nil {
		return fmt.Errorf("unread: mark chat: %w", err)
	}
	return nil
}

// MarkChatRead clears the unread flag for roomID.
func (t *RedisTracker) MarkChatRead(ctx context.Context, uid, roomID int64) error {
	if err := t.redis.SRem(ctx, chatKey(uid), roomID).Err(); err != nil {
		return fmt.Errorf("unread: mark chat read: %w", err)
	}
	return nil
}

// AddNotification records an unread notification for uid.
func (t *RedisTracker) AddNotification(ctx context.Context, uid int64, notificationID string) error {
	if err := t.redis.SAdd(ctx, notificationKey(uid), notificationID).Err(); err != nil {
		return fmt.Errorf("unread: add notification: %w", err)
	}
	return nil
}

// MarkNotificationRead clears one unread notification for uid.
func (t *RedisTracker) MarkNotificationRead(ctx context.Context, uid int64, notificationID string) error {
	if err := t.redis.SRem(ctx, notificationKey(uid), notificationID).Err(); err != nil {
		return fmt.Errorf("unread: mark notification read: %w", err)
	}
	return nil
}

func topicKey(uid int64, category string) string {
	if category == "" {
		return fmt.Sprintf("unread:topics:%d", uid)
	}
	return fmt.Sprintf("unread:topics:%s:%d", category, uid)
}

func chatKey(uid int64) string {
	return fmt.Sprintf("unread:chat:%d", uid)
}

func notificationKey(uid int64) string {
	return fmt.Sprintf("unread:notifications:%d", uid)
}
