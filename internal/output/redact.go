package output

import (
	"encoding/json"
	"fmt"
	"os"

	"ado-governance-audit/internal/model"
)

const redacted = "[redacted]"

// WriteRedactedJSON writes a copy of the audit with identifying fields replaced.
func WriteRedactedJSON(path string, a *model.Audit) error {
	r, err := Redact(a)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Redact returns a deep copy of the audit with admin emails replaced by
// stable tokens (the same address maps to the same token everywhere) and the
// organization URL masked. Project, repository and connection names are kept
// because the findings are meaningless without them; connection IDs are
// masked.
func Redact(a *model.Audit) (*model.Audit, error) {
	// Deep copy via JSON round-trip
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var r model.Audit
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	r.Organization = redacted

	tokens := map[string]string{}
	for i := range r.Projects {
		p := &r.Projects[i]
		for j, e := range p.Admins {
			tok, ok := tokens[e]
			if !ok {
				tok = fmt.Sprintf("admin-%d@redacted", len(tokens)+1)
				tokens[e] = tok
			}
			p.Admins[j] = tok
		}
		for j := range p.ServiceConnections {
			p.ServiceConnections[j].ID = redacted
		}
	}

	// Commands embed the organization URL.
	for i := range r.RemediationSteps {
		r.RemediationSteps[i].Commands = nil
	}
	return &r, nil
}
