package unread

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTracker(t *testing.T) *RedisTracker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTracker(client)
}

func TestTrackerTopicLifecycle(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.MarkTopicUnread(ctx, 42, 100, TopicFlags{New: true, Watched: true}); err != nil {
		t.Fatalf("MarkTopicUnread: %v", err)
	}
	if err := tracker.MarkTopicUnread(ctx, 42, 101, TopicFlags{Unreplied: true}); err != nil {
		t.Fatalf("MarkTopicUnread: %v", err)
	}
	// Marking the same topic twice does not inflate counts.
	if err := tracker.MarkTopicUnread(ctx, 42, 100, TopicFlags{New: true}); err != nil {
		t.Fatalf("MarkTopicUnread: %v", err)
	}

	counts, err := tracker.TopicCounts(ctx, 42)
	if err != nil {
		t.Fatalf("TopicCounts: %v", err)
	}
	want := TopicCounts{Total: 2, New: 1, Watched: 1, Unreplied: 1}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}

	if err := tracker.MarkTopicRead(ctx, 42, 100); err != nil {
		t.Fatalf("MarkTopicRead: %v", err)
	}
	counts, err = tracker.TopicCounts(ctx, 42)
	if err != nil {
		t.Fatalf("TopicCounts: %v", err)
	}
	want = TopicCounts{Total: 1, Unreplied: 1}
	if counts != want {
		t.Errorf("counts after read = %+v, want %+v", counts, want)
	}
}

func TestTrackerChatAndNotifications(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.MarkChatUnread(ctx, 42, 7); err != nil {
		t.Fatalf("MarkChatUnread: %v", err)
	}
	if err := tracker.MarkChatUnread(ctx, 42, 8); err != nil {
		t.Fatalf("MarkChatUnread: %v", err)
	}
	if err := tracker.AddNotification(ctx, 42, "notif-1"); err != nil {
		t.Fatalf("AddNotification: %v", err)
	}

	if n, err := tracker.ChatCount(ctx, 42); err != nil || n != 2 {
		t.Errorf("ChatCount = (%d, %v), want (2, nil)", n, err)
	}
	if n, err := tracker.NotificationCount(ctx, 42); err != nil || n != 1 {
		t.Errorf("NotificationCount = (%d, %v), want (1, nil)", n, err)
	}

	if err := tracker.MarkChatRead(ctx, 42, 7); err != nil {
		t.Fatalf("MarkChatRead: %v", err)
	}
	if err := tracker.MarkNotificationRead(ctx, 42, "notif-1"); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}

	if n, _ := tracker.ChatCount(ctx, 42); n != 1 {
		t.Errorf("ChatCount after read = %d, want 1", n)
	}
	if n, _ := tracker.NotificationCount(ctx, 42); n != 0 {
		t.Errorf("NotificationCount after read = %d, want 0", n)
	}
}

func TestTrackerEmptyUser(t *testing.T) {
	tracker := newTestTracker(t)
	counts, err := tracker.TopicCounts(context.Background(), 9999)
	if err != nil {
		t.Fatalf("TopicCounts: %v", err)
	}
	if counts != (TopicCounts{}) {
		t.Errorf("counts = %+v, want zero", counts)
	}
}

func TestAggregatorWithRedisTracker(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.MarkTopicUnread(ctx, 42, 1, TopicFlags{New: true}); err != nil {
		t.Fatal(err)
	}
	if err := tracker.MarkChatUnread(ctx, 42, 9); err != nil {
		t.Fatal(err)
	}

	agg := NewAggregator(tracker, tracker, tracker)
	bundle, err := agg.Counts(ctx, 42)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if bundle.UnreadTopicCount != 1 || bundle.UnreadNewTopicCount != 1 || bundle.UnreadChatCount != 1 {
		t.Errorf("bundle = %+v", bundle)
	}
}
