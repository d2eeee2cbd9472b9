// Copyright (c) 2026 Courtside. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/courtside/internal/session"
)

// exerciseSlot runs the behaviour every Slot must share.
func exerciseSlot(t *testing.T, slot session.Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Load(ctx, "auth-storage:a")
	assert.ErrorIs(t, err, session.ErrSlotEmpty)

	require.NoError(t, slot.Save(ctx, "auth-storage:a", []byte(`{"v":1}`)))
	require.NoError(t, slot.Save(ctx, "auth-storage:a", []byte(`{"v":2}`)))

	data, err := slot.Load(ctx, "auth-storage:a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(data))

	require.NoError(t, slot.Delete(ctx, "auth-storage:a"))
	require.NoError(t, slot.Delete(ctx, "auth-storage:a"))

	_, err = slot.Load(ctx, "auth-storage:a")
	assert.ErrorIs(t, err, session.ErrSlotEmpty)
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, session.NewMemorySlot())
}

/*
TestRedisSlot exercises the Redis slot against miniredis, including TTL refresh.
*/
func TestRedisSlot(t *testing.T) {
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	slot := session.NewRedisSlot(client, time.Hour)
	exerciseSlot(t, slot)

	ctx := context.Background()
	require.NoError(t, slot.Save(ctx, "auth-storage:b", []byte(`{}`)))
	assert.Equal(t, time.Hour, server.TTL("auth-storage:b"))

	server.FastForward(2 * time.Hour)
	_, err := slot.Load(ctx, "auth-storage:b")
	assert.ErrorIs(t, err, session.ErrSlotEmpty)
}

func TestRedisSlot_Unavailable(t *testing.T) {
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	server.Close()

	_, err := session.NewRedisSlot(client, 0).Load(context.Background(), "k")
	assert.ErrorContains(t, err, "redis_session_get_failed")

	// Open must still come up empty.
	store := session.Open(context.Background(), session.NewRedisSlot(client, 0), "k")
	assert.False(t, store.IsAuthenticated())
}

/*
TestFileSlot verifies the CLI slot writes owner-only files.
*/
func TestFileSlot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	slot, err := session.NewFileSlot(dir)
	require.NoError(t, err)

	exerciseSlot(t, slot)

	require.NoError(t, slot.Save(context.Background(), "auth-storage", []byte(`{}`)))
	info, err := os.Stat(filepath.Join(dir, "auth-storage.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
