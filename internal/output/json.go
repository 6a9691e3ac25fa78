package output

import (
	"encoding/json"
	"os"

	"ado-governance-audit/internal/model"
)

func WriteJSON(path string, a *model.Audit) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}
