package snake

// Score is a non-negative counter.
type Score struct {
	value int
}

// Add increases the score. Negative points are ignored.
func (s *Score) Add(points int) {
	if points > 0 {
		s.value += points
	}
}

func (s *Score) Get() int {
	return s.value
}

func (s *Score) Reset() {
	s.value = 0
}
