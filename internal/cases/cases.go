// Package cases defines the ordered registry of harness test cases. Each
// case binds one prediction capability to fixed scenario inputs, in both its
// direct-call and external-process forms where applicable.
package cases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bartekus/boltzsuite/internal/boltz"
	"github.com/bartekus/boltzsuite/internal/suite"
)

// Fixed scenario inputs. The KRAS-derived test sequence is short enough to
// fold quickly while still exercising real confidence scoring.
const (
	testSequence = "MKTVRQERLKSIVRILERSKEPVSGAQLAEELSVSRQVIVQDIAYLRSLGYNIVATPRGYVLAGG"
	// cysSequence carries a cysteine at residue 12 for the covalent bond.
	cysSequence   = "MKTVRQERLKSCVRILERSKEPVSGAQLAEELSVSRQVIVQDIAYLRSLGYNIVATPRGYVLAGG"
	aspirinSMILES = "CC(=O)OC1=CC=CC=C1C(=O)O"
	covalentCCD   = "U4U"
	dnaSequence   = "ATCGATCGATCGATCG"

	alignmentFixture = "examples/kras_g12c.a3m"
	configFixture    = "examples/protein_ligand.yaml"
)

var (
	allInterfaces = []suite.Interface{suite.InterfaceAPI, suite.InterfaceCLI}
	allEndpoints  = []suite.Endpoint{suite.EndpointLocal, suite.EndpointNvidia}
)

// Registry returns the canonical ordered case list. Descriptors are static;
// callers must not mutate them.
func Registry() []suite.Case {
	return []suite.Case{
		{
			Name:       "01_basic_protein_folding",
			Interfaces: allInterfaces,
			Endpoints:  allEndpoints,
			Direct: func(ctx context.Context, client boltz.Client, p boltz.Params) (*suite.Outcome, error) {
				res, err := client.PredictStructure(ctx, boltz.StructureRequest{Sequence: testSequence, Params: p})
				if err != nil {
					return nil, err
				}
				return outcomeFrom(res, nil), nil
			},
			Args: func(p boltz.Params) []string {
				return withParams([]string{"protein", testSequence}, p)
			},
		},
		{
			Name:       "02_alignment_guided_folding",
			Interfaces: []suite.Interface{suite.InterfaceAPI},
			Endpoints:  allEndpoints,
			Fixture:    alignmentFixture,
			Direct: func(ctx context.Context, client boltz.Client, p boltz.Params) (*suite.Outcome, error) {
				res, err := client.PredictWithAlignment(ctx, boltz.AlignmentRequest{
					Sequence:   testSequence,
					Alignments: []boltz.Alignment{{Path: alignmentFixture, Format: "a3m"}},
					Params:     p,
				})
				if err != nil {
					return nil, err
				}
				return outcomeFrom(res, map[string]string{"alignment_guided": "true"}), nil
			},
		},
		{
			Name:       "03_protein_ligand_complex",
			Interfaces: allInterfaces,
			Endpoints:  allEndpoints,
			Direct: func(ctx context.Context, client boltz.Client, p boltz.Params) (*suite.Outcome, error) {
				res, err := client.PredictLigandComplex(ctx, boltz.LigandRequest{
					ProteinSequence: testSequence,
					LigandSMILES:    aspirinSMILES,
					Params:          p,
				})
				if err != nil {
					return nil, err
				}
				return outcomeFrom(res, map[string]string{"ligand_type": "smiles"}), nil
			},
			Args: func(p boltz.Params) []string {
				return withParams([]string{"ligand", testSequence, "--smiles", aspirinSMILES}, p)
			},
		},
		{
			Name:       "04_covalent_complex",
			Interfaces: allInterfaces,
			Endpoints:  allEndpoints,
			Direct: func(ctx context.Context, client boltz.Client, p boltz.Params) (*suite.Outcome, error) {
				res, err := client.PredictCovalentComplex(ctx, boltz.CovalentRequest{
					ProteinSequence: cysSequence,
					LigandCCD:       covalentCCD,
					Bonds:           []boltz.CovalentBond{{ResidueIndex: 12, ResidueAtom: "SG", LigandAtom: "C22"}},
					Params:          p,
				})
				if err != nil {
					return nil, err
				}
				return outcomeFrom(res, map[string]string{"bond_type": "covalent"}), nil
			},
			Args: func(p boltz.Params) []string {
				return withParams([]string{
					"covalent", cysSequence,
					"--ccd", covalentCCD,
					"--bond", "A:12:SG:LIG:C22",
				}, p)
			},
		},
		{
			Name:       "05_dna_protein_complex",
			Interfaces: allInterfaces,
			Endpoints:  allEndpoints,
			Direct: func(ctx context.Context, client boltz.Client, p boltz.Params) (*suite.Outcome, error) {
				res, err := client.PredictPolymerComplex(ctx, boltz.PolymerComplexRequest{
					ProteinSequences: []string{testSequence},
					DNASequences:     []string{dnaSequence},
					Params:           p,
				})
				if err != nil {
					return nil, err
				}
				return outcomeFrom(res, map[string]string{"complex_type": "dna_protein"}), nil
			},
			Args: func(p boltz.Params) []string {
				return withParams([]string{
					"dna-protein",
					"--protein-sequences", testSequence,
					"--dna-sequences", dnaSequence,
				}, p)
			},
		},
		{
			Name:       "06_config_driven",
			Interfaces: allInterfaces,
			Endpoints:  allEndpoints,
			Fixture:    configFixture,
			Direct: func(ctx context.Context, client boltz.Client, p boltz.Params) (*suite.Outcome, error) {
				res, err := client.PredictFromConfig(ctx, boltz.ConfigRequest{Path: configFixture, Params: p})
				if err != nil {
					return nil, err
				}
				return outcomeFrom(res, map[string]string{"config_type": "yaml"}), nil
			},
			Args: func(p boltz.Params) []string {
				return withParams([]string{"yaml", configFixture}, p)
			},
		},
		{
			Name:       "07_advanced_parameters",
			Interfaces: []suite.Interface{suite.InterfaceAPI},
			Endpoints:  allEndpoints,
			Direct: func(ctx context.Context, client boltz.Client, p boltz.Params) (*suite.Outcome, error) {
				const stepScale = 1.638
				res, err := client.Predict(ctx, boltz.PredictionRequest{
					Polymers: []boltz.Polymer{{
						ID:           "A",
						MoleculeType: "protein",
						Sequence:     testSequence,
					}},
					StepScale: stepScale,
					Params:    p,
				})
				if err != nil {
					return nil, err
				}
				return outcomeFrom(res, map[string]string{
					"config_type": "advanced",
					"step_scale":  fmt.Sprintf("%.3f", stepScale),
				}), nil
			},
		},
		{
			Name:       "health_check",
			Interfaces: []suite.Interface{suite.InterfaceCLI},
			Endpoints:  allEndpoints,
			Args: func(boltz.Params) []string {
				return []string{"health"}
			},
		},
	}
}

// outcomeFrom lifts a client result into a harness outcome, tagging any
// scenario annotations.
func outcomeFrom(res *boltz.Result, details map[string]string) *suite.Outcome {
	n := len(res.Structures)
	conf := res.TopConfidence()
	return &suite.Outcome{
		Confidence: &conf,
		Structures: &n,
		Details:    details,
	}
}

// withParams appends the shared parameter flags every prediction subcommand
// accepts. --no-save keeps the harness from littering structure files.
func withParams(args []string, p boltz.Params) []string {
	return append(args,
		"--recycling-steps", strconv.Itoa(p.RecyclingSteps),
		"--sampling-steps", strconv.Itoa(p.SamplingSteps),
		"--no-save",
	)
}
