package registration

import (
	"io"
	"time"
)

func SetClock(s *Service, now func() time.Time) { s.now = now }

func SetRand(s *Service, r io.Reader) { s.rand = r }
