package boltz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML prediction config from disk and validates the
// pieces the service would otherwise reject late.
func LoadConfig(path string) (*PredictionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var req PredictionRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if len(req.Polymers) == 0 {
		return nil, fmt.Errorf("config %s: no polymers defined", path)
	}
	for i, p := range req.Polymers {
		if p.Sequence == "" {
			return nil, fmt.Errorf("config %s: polymer %d has no sequence", path, i)
		}
		if p.MoleculeType == "" {
			return nil, fmt.Errorf("config %s: polymer %d has no molecule_type", path, i)
		}
	}
	for i, l := range req.Ligands {
		if l.SMILES == "" && l.CCD == "" {
			return nil, fmt.Errorf("config %s: ligand %d needs smiles or ccd", path, i)
		}
	}
	return &req, nil
}
