package chat

import (
	"fmt"
	"testing"
	"time"
)

func TestAcquireCreatesOnce(t *testing.T) {
	s := NewSessionStore(time.Minute, 10)

	sess, created := s.Acquire("s1")
	if !created {
		t.Fatal("first acquire should create the session")
	}
	if sess.Intent != IntentNormal {
		t.Fatalf("new session intent = %q; want normal", sess.Intent)
	}
	sess.Greeted = true
	sess.Release()

	sess, created = s.Acquire("s1")
	defer sess.Release()
	if created {
		t.Fatal("second acquire must reuse the session")
	}
	if !sess.Greeted {
		t.Fatal("state was not carried across acquires")
	}
}

func TestSessionsExpireAfterTTL(t *testing.T) {
	s := NewSessionStore(20*time.Millisecond, 10)

	sess, _ := s.Acquire("s1")
	sess.Release()
	if s.Len() != 1 {
		t.Fatalf("Len = %d; want 1", s.Len())
	}

	time.Sleep(40 * time.Millisecond)
	if s.Len() != 0 {
		t.Fatalf("Len = %d after TTL; want 0", s.Len())
	}

	// the student is treated as new again
	_, created := s.Acquire("s1")
	if !created {
		t.Fatal("expired session should be recreated")
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	s := NewSessionStore(time.Hour, 3)

	for i := 0; i < 3; i++ {
		sess, _ := s.Acquire(fmt.Sprintf("s%d", i))
		sess.Release()
		time.Sleep(time.Millisecond)
	}

	// touch s0 so s1 becomes the oldest
	sess, _ := s.Acquire("s0")
	sess.Release()

	sess, _ = s.Acquire("s3")
	sess.Release()

	if s.Len() != 3 {
		t.Fatalf("Len = %d; want capacity 3", s.Len())
	}
	if _, created := s.Acquire("s1"); !created {
		t.Fatal("s1 should have been evicted as least recently used")
	}
}
