// Package unread answers "what is unread for this user" in a single call by
// fanning out to the topic, chat, and notification trackers concurrently and
// merging the results into one bundle.
package unread

import (
	"context"
	"sync"
)

// TopicCounts are the four unread-topic categories, fetched as one batched query.
type TopicCounts struct {
	Total     int64
	New       int64
	Watched   int64
	Unreplied int64
}

// Bundle is the merged unread state returned to clients. Field names are part
// of the client contract.
type Bundle struct {
	UnreadTopicCount          int64 `json:"unreadTopicCount"`
	UnreadNewTopicCount       int64 `json:"unreadNewTopicCount"`
	UnreadWatchedTopicCount   int64 `json:"unreadWatchedTopicCount"`
	UnreadUnrepliedTopicCount int64 `json:"unreadUnrepliedTopicCount"`
	UnreadChatCount           int64 `json:"unreadChatCount"`
	UnreadNotificationCount   int64 `json:"unreadNotificationCount"`
}

// TopicCounter reports unread topic counts for a user.
type TopicCounter interface {
	TopicCounts(ctx context.Context, uid int64) (TopicCounts, error)
}

// ChatCounter reports the number of chat rooms with unread messages.
type ChatCounter interface {
	ChatCount(ctx context.Context, uid int64) (int64, error)
}

// NotificationCounter reports the number of unread notifications.
type NotificationCounter interface {
	NotificationCount(ctx context.Context, uid int64) (int64, error)
}

// Aggregator merges the three trackers into one Bundle per call. Results are
// computed fresh every time; nothing is cached.
type Aggregator struct {
	topics        TopicCounter
	chats         ChatCounter
	notifications NotificationCounter
}

// NewAggregator wires an Aggregator from its trackers.
func NewAggregator(topics TopicCounter, chats ChatCounter, notifications NotificationCounter) *Aggregator {
	return &Aggregator{topics: topics, chats: chats, notifications: notifications}
}

// Counts returns the unread bundle for uid. Anonymous callers (uid <= 0) get
// a zero bundle without any tracker query. The three tracker queries run
// concurrently; each query reads its own point in time, so the bundle is a
// best-effort snapshot, not a transaction.
func (a *Aggregator) Counts(ctx context.Context, uid int64) (Bundle, error) {
	var bundle Bundle
	if uid <= 0 {
		return bundle, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	wg.Add(3)
	go func() {
		defer wg.Done()
		counts, err := a.topics.TopicCounts(ctx, uid)
		if err != nil {
			setErr(err)
			return
		}
		bundle.UnreadTopicCount = counts.Total
		bundle.UnreadNewTopicCount = counts.New
		bundle.UnreadWatchedTopicCount = counts.Watched
		bundle.UnreadUnrepliedTopicCount = counts.Unreplied
	}()
	go func() {
		defer wg.Done()
		count, err := a.chats.ChatCount(ctx, uid)
		if err != nil {
			setErr(err)
			return
		}
		bundle.UnreadChatCount = count
	}()
	go func() {
		defer wg.Done()
		count, err := a.notifications.NotificationCount(ctx, uid)
		if err != nil {
			setErr(err)
			return
		}
		bundle.UnreadNotificationCount = count
	}()
	wg.Wait()

	if firstErr != nil {
		return Bundle{}, firstErr
	}
	return bundle, nil
}

// TopicCount returns only the total unread-topic count for uid, 0 for anonymous.
func (a *Aggregator) TopicCount(ctx context.Context, uid int64) (int64, error) {
	if uid <= 0 {
		return 0, nil
	}
	counts, err := a.topics.TopicCounts(ctx, uid)
	if err != nil {
		return 0, err
	}
	return counts.Total, nil
}

// ChatCount returns only the unread chat count for uid, 0 for anonymous.
func (a *Aggregator) ChatCount(ctx context.Context, uid int64) (int64, error) {
	if uid <= 0 {
		return 0, nil
	}
	return a.chats.ChatCount(ctx, uid)
}
