package store

import (
	"encoding/binary"
	"sync"
	"time"
)

const clockPropertyKey = "ATELIER:CLOCK:MONOTONIC"

// Clock issues strictly increasing event timestamps that survive
// restarts, so the event logs never run backwards even if the host
// clock does.
type Clock struct {
	sync.Mutex
	store *BadgerStore
	now   time.Time
}

func NewClock(store *BadgerStore) (*Clock, error) {
	bs, err := store.ReadProperty([]byte(clockPropertyKey))
	if err != nil {
		return nil, err
	}
	clock := &Clock{store: store, now: time.Now()}
	if len(bs) == 8 {
		ts := time.Unix(0, int64(binary.BigEndian.Uint64(bs)))
		if ts.After(clock.now) {
			clock.now = ts
		}
	}
	return clock, nil
}

func (c *Clock) Now() time.Time {
	c.Lock()
	defer c.Unlock()

	now := time.Now()
	for !now.After(c.now) {
		now = c.now.Add(time.Nanosecond)
	}
	c.now = now

	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, uint64(c.now.UnixNano()))
	for {
		err := c.store.WriteProperty([]byte(clockPropertyKey), val)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return c.now
}
