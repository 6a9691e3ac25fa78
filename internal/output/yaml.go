package output

import (
	"os"

	"gopkg.in/yaml.v3"

	"ado-governance-audit/internal/model"
)

func WriteYAML(path string, a *model.Audit) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return err
	}
	return enc.Close()
}
