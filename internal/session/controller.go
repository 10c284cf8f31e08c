package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/gateway"
	"github.com/pbaille/orgadmin/internal/store"
)

var (
	// ErrNoScope means a save or edit was issued without an open scope of that kind.
	ErrNoScope = errors.New("no edit in progress")
	// ErrScopeOpen means a scope of that kind is already open.
	ErrScopeOpen = errors.New("an edit of this kind is already open")
	// ErrParentNotSaved means a child scope was requested before its parent exists in the store.
	ErrParentNotSaved = errors.New("parent not saved")
	// ErrMissingField is wrapped by every *ValidationError.
	ErrMissingField = errors.New("missing required field")
)

// Exporter writes a document out. The gateway's file exporter satisfies it.
type Exporter interface {
	Export(ctx context.Context, kind domain.DocumentKind, doc any) error
}

// Options tunes controller behavior
type Options struct {
	// DeferNestedExport keeps department and person changes in memory until
	// the owning company is saved again, instead of exporting after each one.
	DeferNestedExport bool
}

// Controller runs the edit scopes over a store. It is not safe for
// concurrent use; the caller serializes operations.
type Controller struct {
	store    *store.Store
	exporter Exporter
	opts     Options

	company    Scope
	department Scope
	person     Scope
	config     ConfigScope
	pending    *PendingDeletion
}

// New creates a Controller with every scope closed
func New(s *store.Store, exporter Exporter, opts Options) *Controller {
	return &Controller{
		store:      s,
		exporter:   exporter,
		opts:       opts,
		company:    closedScope(),
		department: closedScope(),
		person:     closedScope(),
		config:     ConfigScope{Scope: closedScope()},
	}
}

// Store exposes the underlying store for rendering.
func (c *Controller) Store() *store.Store { return c.store }

// Scopes returns a snapshot of the scope states.
func (c *Controller) Scopes() Scopes {
	return Scopes{Company: c.company, Department: c.department, Person: c.person, Config: c.config}
}

// --- companies ---

// NewCompany opens the company scope for a company that does not exist yet
func (c *Controller) NewCompany() error {
	if c.company.Open() {
		return fmt.Errorf("company: %w", ErrScopeOpen)
	}
	c.company = creatingScope()
	return nil
}

// EditCompany opens the company scope on company i
func (c *Controller) EditCompany(i int) (domain.Company, error) {
	if c.company.Open() {
		return domain.Company{}, fmt.Errorf("company: %w", ErrScopeOpen)
	}
	company, err := c.store.Company(i)
	if err != nil {
		return domain.Company{}, err
	}
	c.company = editingScope(i)
	return company, nil
}

// SaveCompany validates the input, writes the company, exports the companies
// document and closes the scope. On a validation error the scope stays open.
func (c *Controller) SaveCompany(ctx context.Context, in CompanyInput) (domain.Company, error) {
	if !c.company.Open() {
		return domain.Company{}, fmt.Errorf("company: %w", ErrNoScope)
	}
	if err := check(&in); err != nil {
		return domain.Company{}, err
	}
	company, err := c.store.SaveCompany(c.company.target(), in.Name)
	if err != nil {
		return domain.Company{}, fmt.Errorf("save company: %w", err)
	}
	c.CloseCompany()
	return company, c.export(ctx, domain.DocumentCompanies)
}

// CloseCompany closes the company scope and the department and person scopes under it
func (c *Controller) CloseCompany() {
	c.CloseDepartment()
	c.company = closedScope()
}

// --- departments ---

// NewDepartment opens the department scope for a new department of the open company
func (c *Controller) NewDepartment() error {
	if err := c.requireSavedCompany(); err != nil {
		return err
	}
	if c.department.Open() {
		return fmt.Errorf("department: %w", ErrScopeOpen)
	}
	c.department = creatingScope()
	return nil
}

// EditDepartment opens the department scope on department i of the open company
func (c *Controller) EditDepartment(i int) (domain.Department, error) {
	if err := c.requireSavedCompany(); err != nil {
		return domain.Department{}, err
	}
	if c.department.Open() {
		return domain.Department{}, fmt.Errorf("department: %w", ErrScopeOpen)
	}
	dept, err := c.store.Department(c.company.Index, i)
	if err != nil {
		return domain.Department{}, err
	}
	c.department = editingScope(i)
	return dept, nil
}

// SaveDepartment writes the department under the open company and closes the scope
func (c *Controller) SaveDepartment(ctx context.Context, in DepartmentInput) (domain.Department, error) {
	if !c.department.Open() {
		return domain.Department{}, fmt.Errorf("department: %w", ErrNoScope)
	}
	if err := check(&in); err != nil {
		return domain.Department{}, err
	}
	dept, err := c.store.SaveDepartment(c.company.Index, c.department.target(), in.Name)
	if err != nil {
		return domain.Department{}, fmt.Errorf("save department: %w", err)
	}
	c.CloseDepartment()
	return dept, c.exportNested(ctx)
}

// CloseDepartment closes the department scope and the person scope under it
func (c *Controller) CloseDepartment() {
	c.ClosePerson()
	c.department = closedScope()
}

// --- persons ---

// NewPerson opens the person scope for a new person of the open department
func (c *Controller) NewPerson() error {
	if err := c.requireSavedDepartment(); err != nil {
		return err
	}
	if c.person.Open() {
		return fmt.Errorf("person: %w", ErrScopeOpen)
	}
	c.person = creatingScope()
	return nil
}

// EditPerson opens the person scope on person i of the open department
func (c *Controller) EditPerson(i int) (domain.Person, error) {
	if err := c.requireSavedDepartment(); err != nil {
		return domain.Person{}, err
	}
	if c.person.Open() {
		return domain.Person{}, fmt.Errorf("person: %w", ErrScopeOpen)
	}
	p, err := c.store.Person(c.company.Index, c.department.Index, i)
	if err != nil {
		return domain.Person{}, err
	}
	c.person = editingScope(i)
	return p, nil
}

// SavePerson writes the person under the open department and closes the scope
func (c *Controller) SavePerson(ctx context.Context, in PersonInput) (domain.Person, error) {
	if !c.person.Open() {
		return domain.Person{}, fmt.Errorf("person: %w", ErrNoScope)
	}
	if err := check(&in); err != nil {
		return domain.Person{}, err
	}
	p, err := c.store.SavePerson(c.company.Index, c.department.Index, c.person.target(), in.Name, in.Email)
	if err != nil {
		return domain.Person{}, fmt.Errorf("save person: %w", err)
	}
	c.ClosePerson()
	return p, c.exportNested(ctx)
}

// ClosePerson closes the person scope
func (c *Controller) ClosePerson() {
	c.person = closedScope()
}

// --- config ---

// NewConfigItem opens the config scope for a new item of list t
func (c *Controller) NewConfigItem(t domain.ConfigListType) error {
	if c.config.Open() {
		return fmt.Errorf("config: %w", ErrScopeOpen)
	}
	if !t.Valid() {
		return fmt.Errorf("%q: %w", t, store.ErrUnknownConfigList)
	}
	c.config = ConfigScope{Scope: creatingScope(), List: t}
	return nil
}

// EditConfigItem opens the config scope on item i of list t
func (c *Controller) EditConfigItem(t domain.ConfigListType, i int) (domain.ConfigItem, error) {
	if c.config.Open() {
		return domain.ConfigItem{}, fmt.Errorf("config: %w", ErrScopeOpen)
	}
	items, err := c.store.ConfigList(t)
	if err != nil {
		return domain.ConfigItem{}, err
	}
	if i < 0 || i >= len(items) {
		return domain.ConfigItem{}, fmt.Errorf("%s item %d: %w", t, i, store.ErrIndexOutOfRange)
	}
	c.config = ConfigScope{Scope: editingScope(i), List: t}
	return items[i], nil
}

// SaveConfigItem writes the item, exports the config document and closes the scope
func (c *Controller) SaveConfigItem(ctx context.Context, in ConfigItemInput) (domain.ConfigItem, error) {
	if !c.config.Open() {
		return domain.ConfigItem{}, fmt.Errorf("config: %w", ErrNoScope)
	}
	if err := check(&in); err != nil {
		return domain.ConfigItem{}, err
	}
	item, err := c.store.SaveConfigItem(c.config.List, c.config.target(), in.ID, in.Name)
	if err != nil {
		return domain.ConfigItem{}, fmt.Errorf("save config item: %w", err)
	}
	c.CloseConfig()
	return item, c.export(ctx, domain.DocumentConfig)
}

// CloseConfig closes the config scope
func (c *Controller) CloseConfig() {
	c.config = ConfigScope{Scope: closedScope()}
}

// --- documents ---

// ExportAll exports the three documents
func (c *Controller) ExportAll(ctx context.Context) error {
	for _, kind := range domain.Documents {
		if err := c.export(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

// Export exports a single document
func (c *Controller) Export(ctx context.Context, kind domain.DocumentKind) error {
	return c.export(ctx, kind)
}

// Import replaces a whole document with the parsed content of data. Scopes
// and pending deletions are dropped since their indexes may no longer hold.
// On a parse error nothing changes.
func (c *Controller) Import(kind domain.DocumentKind, data []byte) (*gateway.ImportResult, error) {
	res, err := gateway.Import(c.store, kind, data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case domain.DocumentCompanies:
		c.CloseCompany()
	case domain.DocumentConfig:
		c.CloseConfig()
	}
	c.pending = nil
	return res, nil
}

func (c *Controller) requireSavedCompany() error {
	if c.company.State != Editing {
		return fmt.Errorf("save the company first: %w", ErrParentNotSaved)
	}
	return nil
}

func (c *Controller) requireSavedDepartment() error {
	if err := c.requireSavedCompany(); err != nil {
		return err
	}
	if c.department.State != Editing {
		return fmt.Errorf("save the department first: %w", ErrParentNotSaved)
	}
	return nil
}

func (c *Controller) export(ctx context.Context, kind domain.DocumentKind) error {
	doc, err := c.store.Document(kind)
	if err != nil {
		return err
	}
	if err := c.exporter.Export(ctx, kind, doc); err != nil {
		return fmt.Errorf("export %s: %w", kind, err)
	}
	return nil
}

func (c *Controller) exportNested(ctx context.Context) error {
	if c.opts.DeferNestedExport {
		return nil
	}
	return c.export(ctx, domain.DocumentCompanies)
}
