package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/store"
)

var (
	// ErrNoPendingDeletion means the token does not match the deletion awaiting confirmation.
	ErrNoPendingDeletion = errors.New("no matching deletion awaiting confirmation")
	// ErrStaleDeletion means the targeted record changed between request and confirmation.
	ErrStaleDeletion = errors.New("deletion target changed since it was requested")
)

// TargetKind is the kind of record a deletion removes
type TargetKind string

const (
	TargetCompany    TargetKind = "company"
	TargetDepartment TargetKind = "department"
	TargetPerson     TargetKind = "person"
	TargetConfigItem TargetKind = "config"
)

// DeleteTarget addresses the record to delete. Department indexes are read
// within the company being edited and person indexes within the department
// being edited. List is only used for config items.
type DeleteTarget struct {
	Kind  TargetKind            `json:"kind"`
	Index int                   `json:"index"`
	List  domain.ConfigListType `json:"list,omitempty"`
}

// PendingDeletion is a deletion that waits for the operator's answer.
type PendingDeletion struct {
	Token  string       `json:"token"`
	Target DeleteTarget `json:"target"`
	Prompt string       `json:"prompt"`

	companyIndex    int
	departmentIndex int
	snapshot        any
}

// Pending returns the deletion awaiting confirmation, if any.
func (c *Controller) Pending() *PendingDeletion {
	return c.pending
}

// RequestDelete resolves the target and records it as the single pending
// deletion. Nothing is removed until ConfirmDelete is called with the token.
func (c *Controller) RequestDelete(target DeleteTarget) (*PendingDeletion, error) {
	p := &PendingDeletion{Token: uuid.NewString(), Target: target, companyIndex: -1, departmentIndex: -1}

	snapshot, msg, err := c.resolve(p)
	if err != nil {
		return nil, err
	}
	p.snapshot = snapshot
	p.Prompt = msg
	c.pending = p
	return p, nil
}

// CancelDelete drops the pending deletion
func (c *Controller) CancelDelete(token string) error {
	if c.pending == nil || c.pending.Token != token {
		return ErrNoPendingDeletion
	}
	c.pending = nil
	return nil
}

// ConfirmDelete executes the pending deletion and exports the affected document.
func (c *Controller) ConfirmDelete(ctx context.Context, token string) error {
	p := c.pending
	if p == nil || p.Token != token {
		return ErrNoPendingDeletion
	}
	c.pending = nil

	current, err := c.lookup(p)
	if err != nil || !sameRecord(current, p.snapshot) {
		return ErrStaleDeletion
	}

	t := p.Target
	switch t.Kind {
	case TargetCompany:
		if c.company.Open() {
			return fmt.Errorf("company: %w", ErrScopeOpen)
		}
		if _, err := c.store.DeleteCompany(t.Index); err != nil {
			return err
		}
		return c.export(ctx, domain.DocumentCompanies)
	case TargetDepartment:
		if c.department.Open() {
			return fmt.Errorf("department: %w", ErrScopeOpen)
		}
		if _, err := c.store.DeleteDepartment(p.companyIndex, t.Index); err != nil {
			return err
		}
		return c.exportNested(ctx)
	case TargetPerson:
		if c.person.Open() {
			return fmt.Errorf("person: %w", ErrScopeOpen)
		}
		if _, err := c.store.DeletePerson(p.companyIndex, p.departmentIndex, t.Index); err != nil {
			return err
		}
		return c.exportNested(ctx)
	case TargetConfigItem:
		if c.config.Open() {
			return fmt.Errorf("config: %w", ErrScopeOpen)
		}
		if _, err := c.store.DeleteConfigItem(t.List, t.Index); err != nil {
			return err
		}
		return c.export(ctx, domain.DocumentConfig)
	}
	return fmt.Errorf("unknown deletion kind %q", t.Kind)
}

// resolve checks scope preconditions, fills the parent indexes of p and
// returns the targeted record with its confirmation prompt.
func (c *Controller) resolve(p *PendingDeletion) (any, string, error) {
	t := p.Target
	switch t.Kind {
	case TargetCompany:
		if c.company.Open() {
			return nil, "", fmt.Errorf("close the open company first: %w", ErrScopeOpen)
		}
	case TargetDepartment:
		if err := c.requireSavedCompany(); err != nil {
			return nil, "", err
		}
		if c.department.Open() {
			return nil, "", fmt.Errorf("close the open department first: %w", ErrScopeOpen)
		}
		p.companyIndex = c.company.Index
	case TargetPerson:
		if err := c.requireSavedDepartment(); err != nil {
			return nil, "", err
		}
		if c.person.Open() {
			return nil, "", fmt.Errorf("close the open person first: %w", ErrScopeOpen)
		}
		p.companyIndex = c.company.Index
		p.departmentIndex = c.department.Index
	case TargetConfigItem:
		if c.config.Open() {
			return nil, "", fmt.Errorf("close the open config item first: %w", ErrScopeOpen)
		}
	default:
		return nil, "", fmt.Errorf("unknown deletion kind %q", t.Kind)
	}

	rec, err := c.lookup(p)
	if err != nil {
		return nil, "", err
	}
	return rec, prompt(t, rec), nil
}

func (c *Controller) lookup(p *PendingDeletion) (any, error) {
	t := p.Target
	switch t.Kind {
	case TargetCompany:
		return c.store.Company(t.Index)
	case TargetDepartment:
		return c.store.Department(p.companyIndex, t.Index)
	case TargetPerson:
		return c.store.Person(p.companyIndex, p.departmentIndex, t.Index)
	case TargetConfigItem:
		items, err := c.store.ConfigList(t.List)
		if err != nil {
			return nil, err
		}
		if t.Index < 0 || t.Index >= len(items) {
			return nil, fmt.Errorf("%s item %d: %w", t.List, t.Index, store.ErrIndexOutOfRange)
		}
		return items[t.Index], nil
	}
	return nil, fmt.Errorf("unknown deletion kind %q", t.Kind)
}

// sameRecord compares identity fields only; nested children may change
// between request and confirmation without invalidating the request.
func sameRecord(a, b any) bool {
	switch x := a.(type) {
	case domain.Company:
		y, ok := b.(domain.Company)
		return ok && x.ID == y.ID
	case domain.Department:
		y, ok := b.(domain.Department)
		return ok && x.ID == y.ID
	case domain.Person:
		y, ok := b.(domain.Person)
		return ok && x.ID == y.ID
	case domain.ConfigItem:
		y, ok := b.(domain.ConfigItem)
		return ok && x == y
	}
	return false
}

func prompt(t DeleteTarget, rec any) string {
	switch r := rec.(type) {
	case domain.Company:
		return fmt.Sprintf("Delete company %q? All of its departments and persons will be deleted too.", r.Name)
	case domain.Department:
		return fmt.Sprintf("Delete department %q? All of its persons will be deleted too.", r.Name)
	case domain.Person:
		return fmt.Sprintf("Delete person %q?", r.Name)
	case domain.ConfigItem:
		return fmt.Sprintf("Delete %q from %s?", r.Name, t.List.Title())
	}
	return "Delete this record?"
}
