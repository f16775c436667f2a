// Package kerneltest provides helpers for testing tasks against a real kernel.
package kerneltest

import (
	"sync"
	"testing"
	"time"

	"therapy/firmware/kernel"
)

// Timeout bounds every wait in this package.
const Timeout = 2 * time.Second

// Inbox returns the receive channel of ep.
func Inbox(t testing.TB, k *kernel.Kernel, ep kernel.Capability) <-chan kernel.Message {
	t.Helper()
	ch, ok := kernel.NewContext(k).RecvChan(ep)
	if !ok {
		t.Fatal("endpoint has no receive right")
	}
	return ch
}

// Recv waits for the next message on ch.
func Recv(t testing.TB, ch <-chan kernel.Message) kernel.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(Timeout):
		t.Fatal("timed out waiting for message")
		return kernel.Message{}
	}
}

// RecvKind waits for the next message of kind, discarding others.
func RecvKind(t testing.TB, ch <-chan kernel.Message, kind uint16) kernel.Message {
	t.Helper()
	deadline := time.After(Timeout)
	for {
		select {
		case msg := <-ch:
			if msg.Kind == kind {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for message kind %d", kind)
			return kernel.Message{}
		}
	}
}

// ExpectNone fails if a message arrives on ch within d.
func ExpectNone(t testing.TB, ch <-chan kernel.Message, d time.Duration) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message kind=%d payload=%x", msg.Kind, msg.Payload())
	case <-time.After(d):
	}
}

// Clock drives the kernel tick from a test.
type Clock struct {
	mu  sync.Mutex
	k   *kernel.Kernel
	now uint64
}

func NewClock(k *kernel.Kernel) *Clock { return &Clock{k: k} }

// Now returns the last tick set by the clock.
func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the tick forward by n, one tick at a time.
func (c *Clock) Advance(n uint64) {
	for i := uint64(0); i < n; i++ {
		c.mu.Lock()
		c.now++
		seq := c.now
		c.mu.Unlock()
		c.k.TickTo(seq)
	}
}

// Jump moves the tick forward by n in a single step, as a stalled pump would.
func (c *Clock) Jump(n uint64) {
	c.mu.Lock()
	c.now += n
	seq := c.now
	c.mu.Unlock()
	c.k.TickTo(seq)
}

// Run advances one tick every interval until stop is closed.
func (c *Clock) Run(interval time.Duration, stop <-chan struct{}) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				c.Advance(1)
			}
		}
	}()
}

// TaskFunc adapts a function to kernel.Task.
type TaskFunc func(ctx *kernel.Context)

func (f TaskFunc) Run(ctx *kernel.Context) { f(ctx) }
