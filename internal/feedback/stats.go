package feedback

// Statistics aggregates the correction log. Per-piece and per-session counts
// cover active records only; total/active/superseded cover everything.
// The mean original confidence is computed over active records only and is
// zero when none are active.
type Statistics struct {
	TotalCorrections      int
	ActiveCorrections     int
	SupersededCorrections int
	ByPieceType           map[string]int
	BySession             map[string]int
	AvgOriginalConfidence float64
}

// Statistics computes aggregate counts over the log.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		ByPieceType: make(map[string]int),
		BySession:   make(map[string]int),
	}

	confSum := 0.0
	for _, rec := range s.records {
		stats.TotalCorrections++
		if !rec.IsActive {
			stats.SupersededCorrections++
			continue
		}
		stats.ActiveCorrections++
		stats.ByPieceType[rec.UserCorrection]++
		stats.BySession[rec.SessionID]++
		confSum += rec.OriginalConfidence
	}

	if stats.ActiveCorrections > 0 {
		stats.AvgOriginalConfidence = confSum / float64(stats.ActiveCorrections)
	}
	return stats
}

// SessionSummary describes one correction session.
type SessionSummary struct {
	FirstTimestamp string
	LastTimestamp  string
	ActiveCount    int
	TotalCount     int
}

// SessionSummaries groups the log by session. Timestamps are fixed-width and
// sort textually, so first/last comparisons are plain string comparisons.
func (s *Store) SessionSummaries() map[string]SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]SessionSummary)
	for _, rec := range s.records {
		sum, ok := out[rec.SessionID]
		if !ok {
			sum = SessionSummary{FirstTimestamp: rec.Timestamp, LastTimestamp: rec.Timestamp}
		}
		if rec.Timestamp < sum.FirstTimestamp {
			sum.FirstTimestamp = rec.Timestamp
		}
		if rec.Timestamp > sum.LastTimestamp {
			sum.LastTimestamp = rec.Timestamp
		}
		sum.TotalCount++
		if rec.IsActive {
			sum.ActiveCount++
		}
		out[rec.SessionID] = sum
	}
	return out
}

// RecordsBySession returns all records tagged with the given session id, in
// append order.
func (s *Store) RecordsBySession(sessionID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out
}
