package conversation

import (
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/energuide/core"
)

// DefaultWindow is the number of turns kept when no window is configured.
const DefaultWindow = 10

// State is a bounded, ordered log of conversation turns. Once the window is
// full the oldest turns are evicted first. All methods are safe for
// concurrent use and every append is applied as a whole.
type State struct {
	mu     sync.RWMutex
	window int
	turns  []core.Turn
}

// New creates an empty state holding at most window turns.
// A non-positive window selects DefaultWindow.
func New(window int) *State {
	if window <= 0 {
		window = DefaultWindow
	}
	return &State{
		window: window,
		turns:  make([]core.Turn, 0, window),
	}
}

// Append adds turns in order as a single step, evicting the oldest turns
// beyond the window. Invalid turns reject the whole call.
func (s *State) Append(turns ...core.Turn) error {
	for _, t := range turns {
		if err := core.ValidateTurn(t); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, turns...)
	if overflow := len(s.turns) - s.window; overflow > 0 {
		// Copy so the backing array does not grow without bound.
		s.turns = append(make([]core.Turn, 0, s.window), s.turns[overflow:]...)
	}
	return nil
}

// AppendUser records a user message.
func (s *State) AppendUser(text string) {
	_ = s.Append(core.NewTurn(core.RoleUser, text))
}

// AppendAssistant records a chatbot reply.
func (s *State) AppendAssistant(text string) {
	_ = s.Append(core.NewTurn(core.RoleAssistant, text))
}

// LastN returns up to n of the most recent turns, oldest first. It never
// fails: asking for more than is stored returns everything.
func (s *State) LastN(n int) []core.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []core.Turn{}
	}
	if n > len(s.turns) {
		n = len(s.turns)
	}
	return slices.Clone(s.turns[len(s.turns)-n:])
}

// Turns returns a copy of every stored turn, oldest first.
func (s *State) Turns() []core.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.turns)
}

// Len returns the number of stored turns.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Capacity returns the window size.
func (s *State) Capacity() int {
	return s.window
}

// Clear removes every turn.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = make([]core.Turn, 0, s.window)
}

// Speaker labels used in transcripts handed to the generation prompt.
const (
	UserLabel      = "사용자"
	AssistantLabel = "챗봇"
)

// Transcript formats turns as one "label: text" line each.
func Transcript(turns []core.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case core.RoleUser:
			b.WriteString(UserLabel)
		case core.RoleAssistant:
			b.WriteString(AssistantLabel)
		default:
			continue
		}
		b.WriteString(": ")
		b.WriteString(t.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
