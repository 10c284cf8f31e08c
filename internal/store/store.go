package store

import (
	"errors"
	"fmt"

	"github.com/pbaille/orgadmin/internal/domain"
)

var (
	// ErrIndexOutOfRange means a caller addressed a record the store does not hold.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownConfigList means the config list name is not one of the five known lists.
	ErrUnknownConfigList = errors.New("unknown config list")
)

// Store holds the three documents in memory. It is not safe for concurrent use.
type Store struct {
	companies domain.CompaniesDocument
	config    domain.ConfigDocument
	tasks     domain.TasksDocument

	uniqueIDs bool
}

// Option configures a Store
type Option func(*Store)

// WithUniqueIDs bumps generated department and person ids past any id of the
// same kind already used in the document. Without it ids follow the positional
// seeds exactly, which can repeat an id held under another parent.
func WithUniqueIDs() Option {
	return func(s *Store) { s.uniqueIDs = true }
}

// New creates a Store with every document set to its empty default
func New(opts ...Option) *Store {
	s := &Store{
		companies: domain.NewCompaniesDocument(),
		config:    domain.NewConfigDocument(),
		tasks:     domain.NewTasksDocument(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Companies returns the companies in document order. Callers must not modify the result.
func (s *Store) Companies() []domain.Company {
	return s.companies.Companies
}

// Company returns the company at index i
func (s *Store) Company(i int) (domain.Company, error) {
	c, err := s.company(i)
	if err != nil {
		return domain.Company{}, err
	}
	return *c, nil
}

// Department returns department di of company ci
func (s *Store) Department(ci, di int) (domain.Department, error) {
	d, err := s.department(ci, di)
	if err != nil {
		return domain.Department{}, err
	}
	return *d, nil
}

// Person returns person pi of department di of company ci
func (s *Store) Person(ci, di, pi int) (domain.Person, error) {
	d, err := s.department(ci, di)
	if err != nil {
		return domain.Person{}, err
	}
	if pi < 0 || pi >= len(d.Persons) {
		return domain.Person{}, fmt.Errorf("person %d: %w", pi, ErrIndexOutOfRange)
	}
	return d.Persons[pi], nil
}

// ConfigList returns the items of the named config list
func (s *Store) ConfigList(t domain.ConfigListType) ([]domain.ConfigItem, error) {
	l, err := s.configList(t)
	if err != nil {
		return nil, err
	}
	return *l, nil
}

// SaveCompany creates a company when i < 0, otherwise renames company i.
// Departments of an existing company are left as they are.
func (s *Store) SaveCompany(i int, name string) (domain.Company, error) {
	if i < 0 {
		c := domain.Company{ID: s.nextCompanyID(), Name: name, Departments: []domain.Department{}}
		s.companies.Companies = append(s.companies.Companies, c)
		return c, nil
	}
	c, err := s.company(i)
	if err != nil {
		return domain.Company{}, err
	}
	c.Name = name
	return *c, nil
}

// SaveDepartment creates a department under company ci when di < 0, otherwise renames it.
func (s *Store) SaveDepartment(ci, di int, name string) (domain.Department, error) {
	c, err := s.company(ci)
	if err != nil {
		return domain.Department{}, err
	}
	if di < 0 {
		d := domain.Department{ID: s.nextDepartmentID(ci), Name: name, Persons: []domain.Person{}}
		c.Departments = append(c.Departments, d)
		return d, nil
	}
	d, err := s.department(ci, di)
	if err != nil {
		return domain.Department{}, err
	}
	d.Name = name
	return *d, nil
}

// SavePerson creates a person under department di of company ci when pi < 0, otherwise updates it.
func (s *Store) SavePerson(ci, di, pi int, name, email string) (domain.Person, error) {
	d, err := s.department(ci, di)
	if err != nil {
		return domain.Person{}, err
	}
	if pi < 0 {
		p := domain.Person{ID: s.nextPersonID(ci, di), Name: name, Email: email}
		d.Persons = append(d.Persons, p)
		return p, nil
	}
	if pi >= len(d.Persons) {
		return domain.Person{}, fmt.Errorf("person %d: %w", pi, ErrIndexOutOfRange)
	}
	d.Persons[pi].Name = name
	d.Persons[pi].Email = email
	return d.Persons[pi], nil
}

// SaveConfigItem appends to list t when i < 0, otherwise overwrites item i.
// Ids are not checked for uniqueness.
func (s *Store) SaveConfigItem(t domain.ConfigListType, i int, id, name string) (domain.ConfigItem, error) {
	l, err := s.configList(t)
	if err != nil {
		return domain.ConfigItem{}, err
	}
	item := domain.ConfigItem{ID: id, Name: name}
	if i < 0 {
		*l = append(*l, item)
		return item, nil
	}
	if i >= len(*l) {
		return domain.ConfigItem{}, fmt.Errorf("%s item %d: %w", t, i, ErrIndexOutOfRange)
	}
	(*l)[i] = item
	return item, nil
}

// DeleteCompany removes company i together with its departments and persons
func (s *Store) DeleteCompany(i int) (domain.Company, error) {
	c, err := s.Company(i)
	if err != nil {
		return domain.Company{}, err
	}
	s.companies.Companies = append(s.companies.Companies[:i], s.companies.Companies[i+1:]...)
	return c, nil
}

// DeleteDepartment removes department di of company ci together with its persons
func (s *Store) DeleteDepartment(ci, di int) (domain.Department, error) {
	d, err := s.Department(ci, di)
	if err != nil {
		return domain.Department{}, err
	}
	c := &s.companies.Companies[ci]
	c.Departments = append(c.Departments[:di], c.Departments[di+1:]...)
	return d, nil
}

// DeletePerson removes person pi of department di of company ci
func (s *Store) DeletePerson(ci, di, pi int) (domain.Person, error) {
	p, err := s.Person(ci, di, pi)
	if err != nil {
		return domain.Person{}, err
	}
	d := &s.companies.Companies[ci].Departments[di]
	d.Persons = append(d.Persons[:pi], d.Persons[pi+1:]...)
	return p, nil
}

// DeleteConfigItem removes item i of list t
func (s *Store) DeleteConfigItem(t domain.ConfigListType, i int) (domain.ConfigItem, error) {
	l, err := s.configList(t)
	if err != nil {
		return domain.ConfigItem{}, err
	}
	if i < 0 || i >= len(*l) {
		return domain.ConfigItem{}, fmt.Errorf("%s item %d: %w", t, i, ErrIndexOutOfRange)
	}
	item := (*l)[i]
	*l = append((*l)[:i], (*l)[i+1:]...)
	return item, nil
}

// CompaniesDocument returns a copy of the companies document
func (s *Store) CompaniesDocument() domain.CompaniesDocument {
	return s.companies.Clone()
}

// ConfigDocument returns a copy of the config document
func (s *Store) ConfigDocument() domain.ConfigDocument {
	return s.config.Clone()
}

// TasksDocument returns a copy of the tasks document
func (s *Store) TasksDocument() domain.TasksDocument {
	return s.tasks.Clone()
}

// Document returns a copy of the document of the given kind.
func (s *Store) Document(kind domain.DocumentKind) (any, error) {
	switch kind {
	case domain.DocumentCompanies:
		return s.CompaniesDocument(), nil
	case domain.DocumentConfig:
		return s.ConfigDocument(), nil
	case domain.DocumentTasks:
		return s.TasksDocument(), nil
	}
	return nil, fmt.Errorf("document %q: unknown kind", kind)
}

// ReplaceCompanies swaps in a whole companies document
func (s *Store) ReplaceCompanies(doc domain.CompaniesDocument) {
	doc.Normalize()
	s.companies = doc
}

// ReplaceConfig swaps in a whole config document
func (s *Store) ReplaceConfig(doc domain.ConfigDocument) {
	doc.Normalize()
	s.config = doc
}

// ReplaceTasks swaps in a whole tasks document
func (s *Store) ReplaceTasks(doc domain.TasksDocument) {
	doc.Normalize()
	s.tasks = doc
}

// Summary counts the records held in the store
func (s *Store) Summary() domain.Summary {
	sum := domain.Summary{
		Companies: len(s.companies.Companies),
		Tasks:     len(s.tasks.Tasks),
	}
	for _, c := range s.companies.Companies {
		sum.Departments += len(c.Departments)
		for _, d := range c.Departments {
			sum.Persons += len(d.Persons)
		}
	}
	return sum
}

func (s *Store) company(i int) (*domain.Company, error) {
	if i < 0 || i >= len(s.companies.Companies) {
		return nil, fmt.Errorf("company %d: %w", i, ErrIndexOutOfRange)
	}
	return &s.companies.Companies[i], nil
}

func (s *Store) department(ci, di int) (*domain.Department, error) {
	c, err := s.company(ci)
	if err != nil {
		return nil, err
	}
	if di < 0 || di >= len(c.Departments) {
		return nil, fmt.Errorf("department %d: %w", di, ErrIndexOutOfRange)
	}
	return &c.Departments[di], nil
}

func (s *Store) configList(t domain.ConfigListType) (*[]domain.ConfigItem, error) {
	l := s.config.List(t)
	if l == nil {
		return nil, fmt.Errorf("%q: %w", t, ErrUnknownConfigList)
	}
	return l, nil
}
