// Package boltz defines the capability surface of the Boltz-2 prediction
// service as the harness consumes it, plus a thin JSON-over-HTTP client.
package boltz

import "context"

// EndpointType selects how a client authenticates and routes requests.
type EndpointType string

const (
	EndpointLocal  EndpointType = "local"
	EndpointHosted EndpointType = "nvidia_hosted"
)

// Params are the numeric knobs shared by every prediction request.
type Params struct {
	RecyclingSteps   int `json:"recycling_steps" yaml:"recycling_steps"`
	SamplingSteps    int `json:"sampling_steps" yaml:"sampling_steps"`
	DiffusionSamples int `json:"diffusion_samples" yaml:"diffusion_samples"`
}

// Polymer is a single chain in a prediction request.
type Polymer struct {
	ID           string `json:"id" yaml:"id"`
	MoleculeType string `json:"molecule_type" yaml:"molecule_type"`
	Sequence     string `json:"sequence" yaml:"sequence"`
}

// Ligand is a small molecule, given either as SMILES or as a CCD code.
type Ligand struct {
	ID     string `json:"id" yaml:"id"`
	SMILES string `json:"smiles,omitempty" yaml:"smiles,omitempty"`
	CCD    string `json:"ccd,omitempty" yaml:"ccd,omitempty"`
}

// CovalentBond links a protein residue atom to a ligand atom.
type CovalentBond struct {
	ResidueIndex int    `json:"residue_index" yaml:"residue_index"`
	ResidueAtom  string `json:"residue_atom" yaml:"residue_atom"`
	LigandAtom   string `json:"ligand_atom" yaml:"ligand_atom"`
}

// Alignment points at an MSA file on disk and names its format.
type Alignment struct {
	Path   string `json:"path" yaml:"path"`
	Format string `json:"format" yaml:"format"`
}

// StructureRequest folds a single protein sequence.
type StructureRequest struct {
	Sequence string
	Params
}

// AlignmentRequest folds a protein guided by one or more MSA files.
type AlignmentRequest struct {
	Sequence   string
	Alignments []Alignment
	Params
}

// LigandRequest predicts a protein-ligand complex from a SMILES string.
type LigandRequest struct {
	ProteinSequence string
	LigandSMILES    string
	Params
}

// CovalentRequest predicts a covalently bonded protein-ligand complex.
type CovalentRequest struct {
	ProteinSequence string
	LigandCCD       string
	Bonds           []CovalentBond
	Params
}

// PolymerComplexRequest predicts a multi-polymer complex, e.g. protein plus DNA.
type PolymerComplexRequest struct {
	ProteinSequences []string
	DNASequences     []string
	Params
}

// PredictionRequest is the full request shape used by the advanced-parameter
// scenario and by config-file-driven predictions.
type PredictionRequest struct {
	Polymers          []Polymer      `json:"polymers" yaml:"polymers"`
	Ligands           []Ligand       `json:"ligands,omitempty" yaml:"ligands,omitempty"`
	Bonds             []CovalentBond `json:"bonds,omitempty" yaml:"bonds,omitempty"`
	StepScale         float64        `json:"step_scale,omitempty" yaml:"step_scale,omitempty"`
	WithoutPotentials bool           `json:"without_potentials,omitempty" yaml:"without_potentials,omitempty"`
	Params            `yaml:",inline"`
}

// Result is what every prediction returns: per-sample confidence scores and
// the produced structure payloads.
type Result struct {
	ConfidenceScores []float64 `json:"confidence_scores"`
	Structures       []string  `json:"structures"`
}

// TopConfidence returns the first confidence score, or 0 when none were reported.
func (r *Result) TopConfidence() float64 {
	if r == nil || len(r.ConfidenceScores) == 0 {
		return 0
	}
	return r.ConfidenceScores[0]
}

// Health reports service readiness. Hosted endpoints do not expose a health
// probe, so Note may explain an unknown status.
type Health struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// Client is the prediction capability surface, one method per scenario kind.
type Client interface {
	PredictStructure(ctx context.Context, req StructureRequest) (*Result, error)
	PredictWithAlignment(ctx context.Context, req AlignmentRequest) (*Result, error)
	PredictLigandComplex(ctx context.Context, req LigandRequest) (*Result, error)
	PredictCovalentComplex(ctx context.Context, req CovalentRequest) (*Result, error)
	PredictPolymerComplex(ctx context.Context, req PolymerComplexRequest) (*Result, error)
	PredictFromConfig(ctx context.Context, req ConfigRequest) (*Result, error)
	Predict(ctx context.Context, req PredictionRequest) (*Result, error)
	HealthCheck(ctx context.Context) (*Health, error)
}

// ConfigRequest drives a prediction from a YAML config file on disk.
type ConfigRequest struct {
	Path string
	Params
}
