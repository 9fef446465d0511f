package balances

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/wallet-dashboard/internal/model"
)

func native(amount string) model.Balances {
	return model.Balances{model.NativeBalance{BalanceBase: model.BalanceBase{Chain: "polygon", Amount: amount}}}
}

func constFetch(bs model.Balances) Fetcher {
	return func(context.Context) (model.Balances, error) { return bs, nil }
}

func TestRefresh_StoresLatest(t *testing.T) {
	book := NewBook(time.Minute)

	_, ok := book.Latest("s1")
	require.False(t, ok)

	// When
	snap, err := book.Refresh(context.Background(), "s1", Load, constFetch(native("1")))

	// Then
	require.NoError(t, err)
	require.False(t, snap.Stale)
	require.Equal(t, uint64(1), snap.Seq)
	latest, ok := book.Latest("s1")
	require.True(t, ok)
	require.Equal(t, "1", latest.Balances[0].Base().Amount)

	snap, err = book.Refresh(context.Background(), "s1", Update, constFetch(native("2")))
	require.NoError(t, err)
	require.Equal(t, uint64(2), snap.Seq)
	latest, _ = book.Latest("s1")
	require.Equal(t, "2", latest.Balances[0].Base().Amount)
}

func TestRefresh_StaleResultIgnored(t *testing.T) {
	book := NewBook(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	slow := func(context.Context) (model.Balances, error) {
		close(started)
		<-release
		return native("old"), nil
	}

	done := make(chan Snapshot)
	go func() {
		snap, err := book.Refresh(context.Background(), "s1", Load, slow)
		require.NoError(t, err)
		done <- snap
	}()
	<-started

	// When
	fresh, err := book.Refresh(context.Background(), "s1", Update, constFetch(native("new")))
	require.NoError(t, err)
	close(release)
	old := <-done

	// Then
	require.False(t, fresh.Stale)
	require.True(t, old.Stale)
	latest, _ := book.Latest("s1")
	require.Equal(t, "new", latest.Balances[0].Base().Amount)
}

func TestForce_DoesNotJoinInflightLoad(t *testing.T) {
	book := NewBook(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	slow := func(context.Context) (model.Balances, error) {
		close(started)
		<-release
		return native("10"), nil
	}

	done := make(chan Snapshot)
	go func() {
		snap, err := book.Refresh(context.Background(), "s1", Load, slow)
		require.NoError(t, err)
		done <- snap
	}()
	<-started

	// When
	var calls atomic.Int32
	forced, err := book.Force(context.Background(), "s1", func(context.Context) (model.Balances, error) {
		calls.Add(1)
		return native("9"), nil
	})
	require.NoError(t, err)
	close(release)
	old := <-done

	// Then
	require.Equal(t, int32(1), calls.Load())
	require.False(t, forced.Stale)
	require.Equal(t, "9", forced.Balances[0].Base().Amount)
	require.True(t, old.Stale)
	latest, _ := book.Latest("s1")
	require.Equal(t, "9", latest.Balances[0].Base().Amount)
}

func TestRefresh_FailureKeepsSnapshot(t *testing.T) {
	book := NewBook(time.Minute)
	_, err := book.Refresh(context.Background(), "s1", Load, constFetch(native("1")))
	require.NoError(t, err)

	_, err = book.Refresh(context.Background(), "s1", Update, func(context.Context) (model.Balances, error) {
		return nil, errors.New("backend down")
	})
	require.Error(t, err)

	latest, ok := book.Latest("s1")
	require.True(t, ok)
	require.Equal(t, "1", latest.Balances[0].Base().Amount)
}

func TestRefresh_Coalesced(t *testing.T) {
	book := NewBook(time.Minute)
	var calls atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	fetch := func(context.Context) (model.Balances, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return native("1"), nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		book.Refresh(context.Background(), "s1", Load, fetch)
	}()
	<-started
	go func() {
		defer wg.Done()
		book.Refresh(context.Background(), "s1", Load, fetch)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
}

func TestForget_DropsInFlight(t *testing.T) {
	book := NewBook(time.Minute)
	snap, err := book.Refresh(context.Background(), "s1", Load, func(context.Context) (model.Balances, error) {
		book.Forget("s1")
		return native("1"), nil
	})
	require.NoError(t, err)
	require.True(t, snap.Stale)

	_, ok := book.Latest("s1")
	require.False(t, ok)
	require.Equal(t, 0, book.Len())
}

func TestSweep(t *testing.T) {
	book := NewBook(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	book.now = func() time.Time { return now }

	_, err := book.Refresh(context.Background(), "old", Load, constFetch(native("1")))
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	_, err = book.Refresh(context.Background(), "new", Load, constFetch(native("2")))
	require.NoError(t, err)

	// When
	now = now.Add(30 * time.Second)
	removed := book.Sweep()

	// Then
	require.Equal(t, 1, removed)
	_, ok := book.Latest("old")
	require.False(t, ok)
	_, ok = book.Latest("new")
	require.True(t, ok)
}

func TestRun_StopsOnCancel(t *testing.T) {
	book := NewBook(time.Nanosecond)
	_, err := book.Refresh(context.Background(), "s1", Load, constFetch(native("1")))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		book.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return book.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
