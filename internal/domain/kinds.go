package domain

import "fmt"

// DocumentKind names one of the three persisted documents
type DocumentKind string

const (
	DocumentCompanies DocumentKind = "companies"
	DocumentConfig    DocumentKind = "config"
	DocumentTasks     DocumentKind = "tasks"
)

// Documents lists every document kind in load/export order.
var Documents = []DocumentKind{DocumentCompanies, DocumentConfig, DocumentTasks}

// FileName is the fixed file name used for loading and exporting.
func (k DocumentKind) FileName() string {
	return string(k) + ".json"
}

// ParseDocumentKind accepts "companies", "config" or "tasks", with or without ".json".
func ParseDocumentKind(s string) (DocumentKind, error) {
	for _, k := range Documents {
		if s == string(k) || s == k.FileName() {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document %q", s)
}

// ConfigListType names one of the configuration lists
type ConfigListType string

const (
	ChangeTypes  ConfigListType = "changeTypes"
	RiskLevels   ConfigListType = "riskLevels"
	ImpactLevels ConfigListType = "impactLevels"
	Priorities   ConfigListType = "priorities"
	Categories   ConfigListType = "categories"
)

// ConfigListTypes lists the configuration lists in display order.
var ConfigListTypes = []ConfigListType{ChangeTypes, RiskLevels, ImpactLevels, Priorities, Categories}

// Valid reports whether t is a known configuration list.
func (t ConfigListType) Valid() bool {
	for _, known := range ConfigListTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Title is the human label of the list.
func (t ConfigListType) Title() string {
	switch t {
	case ChangeTypes:
		return "Change types"
	case RiskLevels:
		return "Risk levels"
	case ImpactLevels:
		return "Impact levels"
	case Priorities:
		return "Priorities"
	case Categories:
		return "Categories"
	}
	return string(t)
}
