package session

import (
	"fmt"

	"github.com/pbaille/orgadmin/internal/domain"
)

// State is the lifecycle position of one edit scope
type State int

const (
	Closed State = iota
	Creating
	Editing
)

func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	}
	return "closed"
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Scope ties an open edit to the record it targets. Index is only
// meaningful while State is Editing.
type Scope struct {
	State State `json:"state"`
	Index int   `json:"index"`
}

func closedScope() Scope { return Scope{State: Closed, Index: -1} }

func creatingScope() Scope { return Scope{State: Creating, Index: -1} }

func editingScope(i int) Scope { return Scope{State: Editing, Index: i} }

// Open reports whether the scope is creating or editing.
func (s Scope) Open() bool { return s.State != Closed }

// target is the store index a save writes to: -1 creates.
func (s Scope) target() int {
	if s.State == Editing {
		return s.Index
	}
	return -1
}

// ConfigScope is a Scope bound to one configuration list.
type ConfigScope struct {
	Scope
	List domain.ConfigListType `json:"list,omitempty"`
}

// Scopes is a snapshot of every edit scope, parents first.
type Scopes struct {
	Company    Scope       `json:"company"`
	Department Scope       `json:"department"`
	Person     Scope       `json:"person"`
	Config     ConfigScope `json:"config"`
}

func (s Scopes) String() string {
	return fmt.Sprintf("company=%s department=%s person=%s config=%s",
		s.Company.State, s.Department.State, s.Person.State, s.Config.State)
}
