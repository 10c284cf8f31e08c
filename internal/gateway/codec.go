package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wI2L/jsondiff"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/store"
)

// ErrInvalidDocument means the bytes could not be decoded as the document.
var ErrInvalidDocument = errors.New("invalid JSON document")

// Marshal renders a document the way exports are written: two-space indent.
func Marshal(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// decode parses data as a document of the given kind and returns a function
// that installs it in a store. Nothing touches the store until it is called.
func decode(kind domain.DocumentKind, data []byte) (func(*store.Store), error) {
	switch kind {
	case domain.DocumentCompanies:
		var doc domain.CompaniesDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", kind.FileName(), ErrInvalidDocument, err)
		}
		return func(s *store.Store) { s.ReplaceCompanies(doc) }, nil
	case domain.DocumentConfig:
		var doc domain.ConfigDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", kind.FileName(), ErrInvalidDocument, err)
		}
		return func(s *store.Store) { s.ReplaceConfig(doc) }, nil
	case domain.DocumentTasks:
		var doc domain.TasksDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", kind.FileName(), ErrInvalidDocument, err)
		}
		return func(s *store.Store) { s.ReplaceTasks(doc) }, nil
	}
	return nil, fmt.Errorf("unknown document %q", kind)
}

// installDefault resets a document to its empty shape.
func installDefault(s *store.Store, kind domain.DocumentKind) {
	switch kind {
	case domain.DocumentCompanies:
		s.ReplaceCompanies(domain.NewCompaniesDocument())
	case domain.DocumentConfig:
		s.ReplaceConfig(domain.NewConfigDocument())
	case domain.DocumentTasks:
		s.ReplaceTasks(domain.NewTasksDocument())
	}
}

// droppedFields lists the JSON pointers of data that the store's copy of the
// document no longer holds, such as keys the document type does not know.
func droppedFields(s *store.Store, kind domain.DocumentKind, data []byte) ([]string, error) {
	kept, err := documentJSON(s, kind)
	if err != nil {
		return nil, err
	}
	patch, err := jsondiff.CompareJSON(data, kept)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", kind.FileName(), err)
	}
	var dropped []string
	for _, op := range patch {
		if op.Type == jsondiff.OperationRemove {
			dropped = append(dropped, op.Path)
		}
	}
	return dropped, nil
}
