package osevent

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitReturnsImmediatelyIfAlreadySignalled(t *testing.T) {
	e := New()
	counter := e.Reset()
	e.Signal()

	done := make(chan struct{})
	go func() {
		e.Wait(counter)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked despite a signal that happened before it")
	}
}

func TestWaitBlocksUntilSignalled(t *testing.T) {
	e := New()
	counter := e.Reset()

	var wg sync.WaitGroup
	woke := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.Wait(counter)
		close(woke)
	}()

	select {
	case <-woke:
		t.Fatal("Wait returned before Signal was called")
	case <-time.After(50 * time.Millisecond):
	}

	e.Signal()
	wg.Wait()
}

func TestSignalWakesAllWaiters(t *testing.T) {
	e := New()
	counter := e.Reset()

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			e.Wait(counter)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	e.Signal()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all waiters were woken")
	}
}

func TestResetNoLostWakeupUnderRace(t *testing.T) {
	e := New()
	for i := 0; i < 1000; i++ {
		counter := e.Reset()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Wait(counter)
		}()
		e.Signal()
		wg.Wait()
	}
}
