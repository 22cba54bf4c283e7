package actionset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/fieldflip/internal/core/errs"
)

var (
	ErrUnknownAction    = fmt.Errorf("%w: unknown action", errs.ErrInvalidArgument)
	ErrUnknownActionSet = errors.New("unknown action set")
	ErrInvalidActionSet = errors.New("invalid action set")
)

// Resolver is the view of an action set the symmetry transform depends on.
type Resolver interface {
	// StickyActions returns the sticky subset in a stable order. Sticky bit
	// vectors are indexed by this order.
	StickyActions() []Action
	// Canonical resolves an integer code, an Action or an action name to an
	// action of the set.
	Canonical(raw any) (Action, error)
}

var _ Resolver = (*Set)(nil)

// Set is an immutable, ordered action set. Integer action codes index into
// Actions.
type Set struct {
	name    string
	actions []Action
	sticky  []Action
	codes   map[Action]int
	digest  uint64
}

// New builds a set from an ordered action list. When sticky is nil the sticky
// subset is every action flagged sticky, in set order.
func New(name string, actions []Action, sticky []Action) (*Set, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidActionSet)
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: %s has no actions", ErrInvalidActionSet, name)
	}

	s := &Set{
		name:    name,
		actions: make([]Action, len(actions)),
		codes:   make(map[Action]int, len(actions)),
	}
	for i, a := range actions {
		if !a.Known() {
			return nil, fmt.Errorf("%w: %s: action %q", ErrInvalidActionSet, name, a)
		}
		if _, dup := s.codes[a]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate action %q", ErrInvalidActionSet, name, a)
		}
		s.actions[i] = a
		s.codes[a] = i
	}

	if sticky == nil {
		for _, a := range s.actions {
			if a.Sticky() {
				s.sticky = append(s.sticky, a)
			}
		}
	} else {
		seen := make(map[Action]struct{}, len(sticky))
		for _, a := range sticky {
			if !s.Contains(a) {
				return nil, fmt.Errorf("%w: %s: sticky action %q is not in the set", ErrInvalidActionSet, name, a)
			}
			if _, dup := seen[a]; dup {
				return nil, fmt.Errorf("%w: %s: duplicate sticky action %q", ErrInvalidActionSet, name, a)
			}
			seen[a] = struct{}{}
		}
		s.sticky = append([]Action(nil), sticky...)
	}

	s.digest = digest(s.actions, s.sticky)
	return s, nil
}

func (s *Set) Name() string { return s.name }

func (s *Set) Len() int { return len(s.actions) }

// Actions returns a copy of the ordered action list.
func (s *Set) Actions() []Action {
	return append([]Action(nil), s.actions...)
}

func (s *Set) StickyActions() []Action {
	return append([]Action(nil), s.sticky...)
}

// Code returns the integer code of a within the set.
func (s *Set) Code(a Action) (int, error) {
	code, ok := s.codes[a]
	if !ok {
		return 0, fmt.Errorf("%w: %q not in action set %s", ErrUnknownAction, a, s.name)
	}
	return code, nil
}

func (s *Set) Contains(a Action) bool {
	_, ok := s.codes[a]
	return ok
}

func (s *Set) Canonical(raw any) (Action, error) {
	switch v := raw.(type) {
	case Action:
		return s.member(v)
	case string:
		return s.member(Action(strings.ToLower(v)))
	case int:
		return s.at(int64(v))
	case int8:
		return s.at(int64(v))
	case int16:
		return s.at(int64(v))
	case int32:
		return s.at(int64(v))
	case int64:
		return s.at(v)
	case uint:
		return s.atUnsigned(uint64(v))
	case uint8:
		return s.atUnsigned(uint64(v))
	case uint16:
		return s.atUnsigned(uint64(v))
	case uint32:
		return s.atUnsigned(uint64(v))
	case uint64:
		return s.atUnsigned(v)
	case float64:
		// JSON numbers arrive as float64
		if v != float64(int64(v)) {
			return "", fmt.Errorf("%w: non-integral code %v", ErrUnknownAction, v)
		}
		return s.at(int64(v))
	default:
		return "", fmt.Errorf("%w: unsupported raw action %T", ErrUnknownAction, raw)
	}
}

// Digest fingerprints the ordered actions and sticky subset. Two sets with the
// same digest assign the same meaning to codes and sticky bits.
func (s *Set) Digest() uint64 {
	return s.digest
}

func (s *Set) member(a Action) (Action, error) {
	if !s.Contains(a) {
		return "", fmt.Errorf("%w: %q not in action set %s", ErrUnknownAction, a, s.name)
	}
	return a, nil
}

func (s *Set) at(code int64) (Action, error) {
	if code < 0 || code >= int64(len(s.actions)) {
		return "", fmt.Errorf("%w: code %d out of range [0, %d) for action set %s",
			ErrUnknownAction, code, len(s.actions), s.name)
	}
	return s.actions[code], nil
}

func (s *Set) atUnsigned(code uint64) (Action, error) {
	if code >= uint64(len(s.actions)) {
		return "", fmt.Errorf("%w: code %d out of range [0, %d) for action set %s",
			ErrUnknownAction, code, len(s.actions), s.name)
	}
	return s.actions[code], nil
}

func digest(actions, sticky []Action) uint64 {
	h := xxhash.New()
	for _, a := range actions {
		_, _ = h.WriteString(string(a))
		_, _ = h.WriteString(",")
	}
	_, _ = h.WriteString("|")
	for _, a := range sticky {
		_, _ = h.WriteString(string(a))
		_, _ = h.WriteString(",")
	}
	return h.Sum64()
}
