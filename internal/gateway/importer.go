package gateway

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/wI2L/jsondiff"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/store"
)

// ImportResult reports what an import changed
type ImportResult struct {
	Document domain.DocumentKind `json:"document"`
	Changed  bool                `json:"changed"`
	Patch    jsondiff.Patch      `json:"patch"`
	Summary  domain.Summary      `json:"summary"`
	// Dropped lists fields of the imported file the document does not keep.
	Dropped  []string            `json:"dropped,omitempty"`
}

// Import parses data as a document of the given kind and replaces the
// store's copy wholesale. When data does not parse the store is left as it was.
func Import(s *store.Store, kind domain.DocumentKind, data []byte) (*ImportResult, error) {
	install, err := decode(kind, data)
	if err != nil {
		return nil, err
	}

	before, err := documentJSON(s, kind)
	if err != nil {
		return nil, err
	}
	install(s)
	after, err := documentJSON(s, kind)
	if err != nil {
		return nil, err
	}

	dropped, err := droppedFields(s, kind, data)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Document: kind, Summary: s.Summary(), Dropped: dropped}
	if jsonpatch.Equal(before, after) {
		return res, nil
	}
	patch, err := jsondiff.CompareJSON(before, after)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", kind.FileName(), err)
	}
	res.Changed = true
	res.Patch = patch
	return res, nil
}

func documentJSON(s *store.Store, kind domain.DocumentKind) ([]byte, error) {
	doc, err := s.Document(kind)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind.FileName(), err)
	}
	return data, nil
}
