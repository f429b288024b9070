package events

// DefaultTriggerInterval is the number of closed clues between event draws.
const DefaultTriggerInterval = 4

// State tracks the event lifecycle of one game. The zero value is the state of
// a new game and also what older snapshots without event data decode to.
type State struct {
	QuestionsAnswered uint32        `json:"questions_answered"`
	Active            *Kind         `json:"active_event,omitempty"`
	Queued            *Kind         `json:"queued_event,omitempty"`
	History           []Kind        `json:"event_history"`
	AnimationPlaying  bool          `json:"animation_playing"`
	LastSteal         *StealContext `json:"last_steal,omitempty"`
}

// ShouldTrigger reports whether a new event should be drawn: the counter is
// positive, a multiple of interval, and no event is active or queued.
func (s State) ShouldTrigger(interval uint32) bool {
	if interval == 0 {
		interval = DefaultTriggerInterval
	}
	return s.QuestionsAnswered > 0 &&
		s.QuestionsAnswered%interval == 0 &&
		s.Active == nil &&
		s.Queued == nil
}

// IncrementQuestions counts one closed clue.
func (s *State) IncrementQuestions() {
	s.QuestionsAnswered++
}

// Activate makes k the active event and appends it to history.
func (s *State) Activate(k Kind) {
	s.History = append(s.History, k)
	s.Active = &k
}

// Deactivate clears the active event.
func (s *State) Deactivate() {
	s.Active = nil
}

// IsActive reports whether k is the active event.
func (s State) IsActive(k Kind) bool {
	return s.Active != nil && *s.Active == k
}

// HasActive reports whether any event is active.
func (s State) HasActive() bool {
	return s.Active != nil
}

// Queue places k in the queued slot.
func (s *State) Queue(k Kind) {
	s.Queued = &k
}

// HasQueued reports whether an event is waiting for its announcement.
func (s State) HasQueued() bool {
	return s.Queued != nil
}

// TakeQueued removes and returns the queued event.
func (s *State) TakeQueued() (Kind, bool) {
	if s.Queued == nil {
		return "", false
	}
	k := *s.Queued
	s.Queued = nil
	return k, true
}

// SetAnimationPlaying records whether an announcement is on screen.
func (s *State) SetAnimationPlaying(playing bool) {
	s.AnimationPlaying = playing
}

// Multiplier is the score multiplier the active event applies to clue resolution.
func (s State) Multiplier() int {
	if s.IsActive(DoublePoints) {
		return 2
	}
	return 1
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.Active != nil {
		k := *s.Active
		out.Active = &k
	}
	if s.Queued != nil {
		k := *s.Queued
		out.Queued = &k
	}
	if s.History != nil {
		out.History = append([]Kind(nil), s.History...)
	}
	if s.LastSteal != nil {
		steal := *s.LastSteal
		out.LastSteal = &steal
	}
	return out
}
