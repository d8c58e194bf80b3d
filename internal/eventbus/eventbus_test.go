package eventbus

import (
	"testing"
	"time"
)

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := New[string]()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	bus.Publish("assigned")

	for _, sub := range []<-chan string{a, b} {
		select {
		case got := <-sub:
			if got != "assigned" {
				t.Fatalf("unexpected event %q", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	bus := New[int]()
	defer bus.Close()

	bus.Subscribe() // never drained
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New[int]()
	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	if _, open := <-sub; open {
		t.Fatal("channel should be closed after unsubscribe")
	}

	bus.Close()
	if late := bus.Subscribe(); late == nil {
		t.Fatal("subscribe after close must still return a channel")
	}
}
