package suite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_StartsPending(t *testing.T) {
	r := NewResult("01_basic_protein_folding", InterfaceAPI, EndpointLocal)
	assert.Equal(t, StatusPending, r.Status)
	assert.False(t, r.Terminal())
}

func TestResult_MarkSuccess(t *testing.T) {
	r := NewResult("01_basic_protein_folding", InterfaceAPI, EndpointLocal)

	conf := 0.87
	n := 1
	err := r.MarkSuccess(2*time.Second, &Outcome{
		Confidence: &conf,
		Structures: &n,
		Details:    map[string]string{"ligand_type": "smiles"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, r.Status)
	assert.Equal(t, 2*time.Second, r.Duration)
	assert.Equal(t, 0.87, *r.Confidence)
	assert.Equal(t, 1, *r.Structures)
	assert.Equal(t, "smiles", r.Details["ligand_type"])
	assert.True(t, r.Terminal())
}

func TestResult_MarkFailed_KeepsDuration(t *testing.T) {
	r := NewResult("03_protein_ligand_complex", InterfaceCLI, EndpointNvidia)

	err := r.MarkFailed(45*time.Second, "prediction failed: 429 Too Many Requests")
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, 45.0, r.Seconds())
	assert.Contains(t, r.Error, "429")
}

func TestResult_MarkSkipped_ReusesErrorField(t *testing.T) {
	r := NewResult("06_config_driven", InterfaceAPI, EndpointLocal)

	require.NoError(t, r.MarkSkipped("required fixture examples/protein_ligand.yaml not found"))
	assert.Equal(t, StatusSkipped, r.Status)
	assert.Contains(t, r.Error, "not found")
	assert.Zero(t, r.Duration)
}

func TestResult_TransitionsAreOneShot(t *testing.T) {
	r := NewResult("01_basic_protein_folding", InterfaceAPI, EndpointLocal)
	require.NoError(t, r.MarkSuccess(time.Second, nil))

	assert.Error(t, r.MarkFailed(time.Second, "late failure"))
	assert.Error(t, r.MarkSkipped("late skip"))
	assert.Error(t, r.MarkSuccess(time.Second, nil))

	// First transition stays intact.
	assert.Equal(t, StatusSuccess, r.Status)
	assert.Empty(t, r.Error)
}

func TestParamsFor(t *testing.T) {
	quick := ParamsFor(true)
	assert.Equal(t, 1, quick.RecyclingSteps)
	assert.Equal(t, 10, quick.SamplingSteps)
	assert.Equal(t, 1, quick.DiffusionSamples)

	normal := ParamsFor(false)
	assert.Equal(t, 2, normal.RecyclingSteps)
	assert.Equal(t, 20, normal.SamplingSteps)
	assert.Equal(t, 1, normal.DiffusionSamples)
}

func TestCase_AppliesTo(t *testing.T) {
	c := Case{
		Name:       "07_advanced_parameters",
		Interfaces: []Interface{InterfaceAPI},
		Endpoints:  []Endpoint{EndpointLocal, EndpointNvidia},
	}

	assert.True(t, c.AppliesTo(EndpointLocal, InterfaceAPI))
	assert.True(t, c.AppliesTo(EndpointNvidia, InterfaceAPI))
	assert.False(t, c.AppliesTo(EndpointLocal, InterfaceCLI))
	assert.False(t, c.AppliesTo(EndpointNvidia, InterfaceCLI))
}

func TestMatrix_Empty(t *testing.T) {
	assert.True(t, Matrix{}.Empty())
	assert.True(t, Matrix{Endpoints: []Endpoint{EndpointLocal}}.Empty())
	assert.False(t, Matrix{
		Endpoints:  []Endpoint{EndpointLocal},
		Interfaces: []Interface{InterfaceAPI},
	}.Empty())
}
