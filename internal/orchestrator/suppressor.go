package orchestrator

import (
	"sync"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type announcementKey struct {
	kind    models.AnomalyKind
	account string
	bucket  int64
}

// suppressor remembers which anomalies were already announced so that
// overlapping cycles do not re-publish them. Entries expire once their
// detection time falls out of the ttl window.
type suppressor struct {
	ttl  time.Duration
	mu   sync.Mutex
	seen map[announcementKey]time.Time
}

func newSuppressor(ttl time.Duration) *suppressor {
	return &suppressor{
		ttl:  ttl,
		seen: make(map[announcementKey]time.Time),
	}
}

func (s *suppressor) filter(records []models.AnomalyRecord, asOf time.Time) []models.AnomalyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	horizon := asOf.Add(-s.ttl)
	for k, detectedAt := range s.seen {
		if detectedAt.Before(horizon) {
			delete(s.seen, k)
		}
	}

	var fresh []models.AnomalyRecord
	for _, r := range records {
		key := announcementKey{
			kind:    r.Kind,
			account: r.Account(),
			bucket:  r.Bucket().Unix(),
		}
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = r.DetectedAt
		fresh = append(fresh, r)
	}
	return fresh
}
