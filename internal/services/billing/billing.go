// Package billing issues the daily sequential bill numbers printed on
// customer bills. Redis INCR is the primary counter; the table store and
// an in-process counter back it up during outages.
package billing

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"annapurna-pos/internal/storage"
)

const counterKeyPrefix = "pos:bill:counter:"

// counters expire well after the day they belong to; redis tidies them up.
const counterTTL = 48 * time.Hour

type Service struct {
	redis *redis.Client // nil when redis never came up
	store storage.Store
	clock func() time.Time

	mu       sync.Mutex
	lastDate string
	lastSeq  int
}

func NewService(rdb *redis.Client, store storage.Store) *Service {
	return &Service{redis: rdb, store: store, clock: time.Now}
}

func (s *Service) SetClock(clock func() time.Time) { s.clock = clock }

func (s *Service) today() string {
	return s.clock().Format("2006-01-02")
}

// NextBillNumber returns the next zero-padded sequential number for
// today. Remote failures degrade through the table store down to a
// process-local counter; a number is always produced.
func (s *Service) NextBillNumber(ctx context.Context) (string, error) {
	date := s.today()

	if s.redis != nil {
		key := counterKeyPrefix + date
		n, err := s.redis.Incr(ctx, key).Result()
		if err == nil {
			s.redis.Expire(ctx, key, counterTTL)
			seq := int(n)
			// mirror so later outages continue the sequence
			if err := s.store.SetBillCounter(ctx, date, seq); err != nil {
				log.Printf("bill counter mirror failed: %v", err)
			}
			s.remember(date, seq)
			return FormatBillNumber(seq), nil
		}
		log.Printf("redis bill counter failed, falling back: %v", err)
	}

	if seq, err := s.store.IncrementBillCounter(ctx, date); err == nil {
		s.remember(date, seq)
		return FormatBillNumber(seq), nil
	} else {
		log.Printf("store bill counter failed, falling back: %v", err)
	}

	return FormatBillNumber(s.localNext(date)), nil
}

// ResetBillCounter clears a day's counter in redis, the table store and
// the local fallback. An empty date means today.
func (s *Service) ResetBillCounter(ctx context.Context, date string) error {
	if date == "" {
		date = s.today()
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, counterKeyPrefix+date).Err(); err != nil {
			log.Printf("redis bill counter reset failed: %v", err)
		}
	}
	if err := s.store.ResetBillCounter(ctx, date); err != nil {
		log.Printf("store bill counter reset failed: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastDate == date {
		s.lastSeq = 0
	}
	return nil
}

func (s *Service) remember(date string, seq int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDate = date
	s.lastSeq = seq
}

// localNext is the last-resort counter. It resets whenever the stored
// date differs from today and is not safe across processes.
func (s *Service) localNext(date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastDate != date {
		s.lastDate = date
		s.lastSeq = 0
	}
	s.lastSeq++
	return s.lastSeq
}

// FormatBillNumber left-pads to width 3; a fourth digit grows naturally.
func FormatBillNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}
