package domain

// IDSource hands out increasing ids for the lifetime of one game session.
// Ids are never reused; a new session starts a new source.
type IDSource struct {
	last int
}

// Next returns the next unused id.
func (s *IDSource) Next() int {
	s.last++
	return s.last
}
