package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/user/tubefetch/internal/types"
)

func TestGatewayInlineDispatch(t *testing.T) {
	var got []int64
	gw := New(func(_ context.Context, u types.Update) {
		got = append(got, u.ID)
	}, 1)
	gw.Start(context.Background())
	defer gw.Stop()

	if gw.Queue != nil {
		t.Fatal("concurrency 1 should not create a queue")
	}
	gw.HandleInbound(context.Background(), textUpdate(3, 1))
	gw.HandleInbound(context.Background(), textUpdate(4, 1))

	// Inline dispatch has completed by the time HandleInbound returns.
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("expected inline handling of both updates, got %v", got)
	}
}

func TestGatewayQueuedDispatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	seen := map[types.ChatID][]int64{}
	var wg sync.WaitGroup
	wg.Add(4)

	gw := New(func(_ context.Context, u types.Update) {
		defer wg.Done()
		mu.Lock()
		seen[u.ChatID()] = append(seen[u.ChatID()], u.ID)
		mu.Unlock()
	}, 3)
	gw.Start(context.Background())

	gw.HandleInbound(context.Background(), textUpdate(1, 10))
	gw.HandleInbound(context.Background(), textUpdate(2, 20))
	gw.HandleInbound(context.Background(), textUpdate(3, 10))
	gw.HandleInbound(context.Background(), textUpdate(4, 20))

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queued updates")
	}
	gw.Stop()

	mu.Lock()
	defer mu.Unlock()
	if a := seen[10]; len(a) != 2 || a[0] != 1 || a[1] != 3 {
		t.Errorf("chat 10 order wrong: %v", a)
	}
	if b := seen[20]; len(b) != 2 || b[0] != 2 || b[1] != 4 {
		t.Errorf("chat 20 order wrong: %v", b)
	}
}
