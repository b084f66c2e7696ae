package rexec

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Probe(t *testing.T) {
	fake := &fakeTransport{handler: reachable("web1")}
	engine := newTestEngine(t, WithTransport(fake))
	ctx := context.Background()

	ok, err := engine.Probe(ctx, "web1", false)
	require.NoError(t, err)
	assert.True(t, ok)

	login, cached := engine.Cache().Lookup("web1")
	assert.True(t, cached)
	assert.Equal(t, "alice", login)

	// Cached, the host is not contacted again.
	ok, err = engine.Probe(ctx, "web1", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, fake.commands(), 1)

	ok, err = engine.Probe(ctx, "web1", true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, fake.commands(), 2)
}

func TestEngine_ProbeUnreachable(t *testing.T) {
	fake := &fakeTransport{handler: reachable("web1")}
	engine := newTestEngine(t, WithTransport(fake))
	ctx := context.Background()

	ok, err := engine.Probe(ctx, "web2", false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, engine.Cache().Hosts())

	// Unreachable hosts are asked again.
	_, err = engine.Probe(ctx, "web2", false)
	require.NoError(t, err)
	assert.Len(t, fake.commands(), 2)
}

func TestEngine_ProbeForceDropsStaleEntry(t *testing.T) {
	fake := &fakeTransport{handler: reachable()}
	engine := newTestEngine(t, WithTransport(fake))
	engine.Cache().Store("web1", "alice")

	ok, err := engine.Probe(context.Background(), "web1", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, fake.commands())

	ok, err = engine.Probe(context.Background(), "web1", true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, engine.Cache().Hosts())
}

func TestEngine_ProbeLocal(t *testing.T) {
	engine := newTestEngine(t)

	ok, err := engine.Probe(context.Background(), "localhost", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"localhost"}, engine.Cache().Hosts())
}

func TestEngine_ProbeSharedCache(t *testing.T) {
	cache := NewCache()
	fake := &fakeTransport{handler: reachable("web1")}

	first := newTestEngine(t, WithTransport(fake), WithCache(cache))
	second := newTestEngine(t, WithTransport(fake), WithCache(cache))

	ok, err := first.Probe(context.Background(), "web1", false)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Probe(context.Background(), "web1", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, fake.commands(), 1)
}

func TestEngine_ProbeConcurrent(t *testing.T) {
	fake := &fakeTransport{handler: reachable("web1")}
	engine := newTestEngine(t, WithTransport(fake))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := engine.Probe(context.Background(), "web1", false)
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"web1"}, engine.Cache().Hosts())
}

func TestEngine_ProbeCallerGivesUp(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	fake := &fakeTransport{handler: func(inv Invocation, stdin string) reply {
		once.Do(func() { close(started) })
		<-release
		return reachable("web1")(inv, stdin)
	}}
	engine := newTestEngine(t, WithTransport(fake))

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := engine.Probe(ctx, "web1", false)
		first <- err
	}()
	<-started

	type outcome struct {
		ok  bool
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		ok, err := engine.Probe(context.Background(), "web1", false)
		second <- outcome{ok, err}
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.True(t, got.ok)
	assert.Equal(t, []string{"web1"}, engine.Cache().Hosts())
}

func TestCache(t *testing.T) {
	cache := NewCache()

	_, ok := cache.Lookup("web1")
	assert.False(t, ok)

	cache.Store("web2", "bob")
	cache.Store("web1", "alice")
	assert.Equal(t, []string{"web1", "web2"}, cache.Hosts())

	login, ok := cache.Lookup("web2")
	assert.True(t, ok)
	assert.Equal(t, "bob", login)

	cache.Invalidate("web2")
	cache.Invalidate("unknown")
	assert.Equal(t, []string{"web1"}, cache.Hosts())
}
