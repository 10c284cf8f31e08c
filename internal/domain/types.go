package domain

import (
	"encoding/json"
	"time"
)

// Person is a member of a department
type Person struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Department belongs to exactly one company and owns its persons
type Department struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Persons []Person `json:"persons"`
}

// Company is the root of the organization hierarchy
type Company struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Departments []Department `json:"departments"`
}

// ConfigItem is an entry of one of the flat configuration lists
type ConfigItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CompaniesDocument is the content of companies.json
type CompaniesDocument struct {
	Companies []Company `json:"companies"`
}

// ConfigDocument is the content of config.json
type ConfigDocument struct {
	ChangeTypes  []ConfigItem `json:"changeTypes"`
	RiskLevels   []ConfigItem `json:"riskLevels"`
	ImpactLevels []ConfigItem `json:"impactLevels"`
	Priorities   []ConfigItem `json:"priorities"`
	Categories   []ConfigItem `json:"categories"`
}

// TasksDocument is the content of tasks.json. Tasks are opaque here.
type TasksDocument struct {
	Tasks []json.RawMessage `json:"tasks"`
	// Extra holds the other top-level keys of the file; they are written back as read.
	Extra map[string]json.RawMessage `json:"-"`
}

func (d TasksDocument) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Extra)+1)
	for k, v := range d.Extra {
		out[k] = v
	}
	tasks, err := json.Marshal(d.Tasks)
	if err != nil {
		return nil, err
	}
	out["tasks"] = tasks
	return json.Marshal(out)
}

func (d *TasksDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Tasks = nil
	if tasks, ok := raw["tasks"]; ok {
		if err := json.Unmarshal(tasks, &d.Tasks); err != nil {
			return err
		}
		delete(raw, "tasks")
	}
	d.Extra = nil
	if len(raw) > 0 {
		d.Extra = raw
	}
	return nil
}

// Summary holds the record counts shown on the dashboard
type Summary struct {
	Companies   int `json:"companies"`
	Departments int `json:"departments"`
	Persons     int `json:"persons"`
	Tasks       int `json:"tasks"`
}

// ExportRecord is an archived export of one document
type ExportRecord struct {
	ID        string       `json:"id"`
	Document  DocumentKind `json:"document"`
	FileName  string       `json:"file_name"`
	Content   []byte       `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}
