package domain

import "encoding/json"

// NewCompaniesDocument returns the empty companies document.
func NewCompaniesDocument() CompaniesDocument {
	return CompaniesDocument{Companies: []Company{}}
}

// NewConfigDocument returns a config document with all five lists empty.
func NewConfigDocument() ConfigDocument {
	return ConfigDocument{
		ChangeTypes:  []ConfigItem{},
		RiskLevels:   []ConfigItem{},
		ImpactLevels: []ConfigItem{},
		Priorities:   []ConfigItem{},
		Categories:   []ConfigItem{},
	}
}

// NewTasksDocument returns the empty tasks document.
func NewTasksDocument() TasksDocument {
	return TasksDocument{Tasks: []json.RawMessage{}}
}

// Normalize replaces missing lists with empty ones so exports never contain null.
func (d *CompaniesDocument) Normalize() {
	if d.Companies == nil {
		d.Companies = []Company{}
	}
	for ci := range d.Companies {
		c := &d.Companies[ci]
		if c.Departments == nil {
			c.Departments = []Department{}
		}
		for di := range c.Departments {
			if c.Departments[di].Persons == nil {
				c.Departments[di].Persons = []Person{}
			}
		}
	}
}

// Normalize replaces missing lists with empty ones.
func (d *ConfigDocument) Normalize() {
	for _, t := range ConfigListTypes {
		if l := d.List(t); *l == nil {
			*l = []ConfigItem{}
		}
	}
}

// Normalize replaces a missing task list with an empty one.
func (d *TasksDocument) Normalize() {
	if d.Tasks == nil {
		d.Tasks = []json.RawMessage{}
	}
}

// List returns a pointer to the named list, or nil for an unknown type.
func (d *ConfigDocument) List(t ConfigListType) *[]ConfigItem {
	switch t {
	case ChangeTypes:
		return &d.ChangeTypes
	case RiskLevels:
		return &d.RiskLevels
	case ImpactLevels:
		return &d.ImpactLevels
	case Priorities:
		return &d.Priorities
	case Categories:
		return &d.Categories
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d CompaniesDocument) Clone() CompaniesDocument {
	out := CompaniesDocument{Companies: make([]Company, len(d.Companies))}
	for ci, c := range d.Companies {
		depts := make([]Department, len(c.Departments))
		for di, dept := range c.Departments {
			depts[di] = dept
			depts[di].Persons = append([]Person{}, dept.Persons...)
		}
		c.Departments = depts
		out.Companies[ci] = c
	}
	return out
}

// Clone returns a deep copy of the document.
func (d ConfigDocument) Clone() ConfigDocument {
	out := NewConfigDocument()
	for _, t := range ConfigListTypes {
		*out.List(t) = append([]ConfigItem{}, *d.List(t)...)
	}
	return out
}

// Clone returns a copy of the document; task payloads are shared.
func (d TasksDocument) Clone() TasksDocument {
	out := TasksDocument{Tasks: append([]json.RawMessage{}, d.Tasks...)}
	if d.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
