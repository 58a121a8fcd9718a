package merge

import "time"

// SetNow overrides the service clock in tests.
func SetNow(s *Service, f func() time.Time) { s.now = f }
