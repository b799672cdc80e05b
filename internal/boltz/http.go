package boltz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const predictPath = "/biology/mit/boltz2/predict"

// HTTPClient implements Client against a Boltz-2 NIM over JSON/HTTP.
type HTTPClient struct {
	baseURL      string
	apiKey       string
	endpointType EndpointType
	hc           *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithAPIKey sets the bearer credential sent to hosted endpoints.
func WithAPIKey(key string) Option {
	return func(c *HTTPClient) { c.apiKey = key }
}

// WithEndpointType overrides the default local endpoint type.
func WithEndpointType(t EndpointType) Option {
	return func(c *HTTPClient) { c.endpointType = t }
}

// WithHTTPClient substitutes the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

// NewHTTPClient builds a client for the given base URL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		endpointType: EndpointLocal,
		hc:           &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// predictPayload is the wire shape of a prediction request.
type predictPayload struct {
	Polymers          []Polymer      `json:"polymers"`
	Ligands           []Ligand       `json:"ligands,omitempty"`
	Bonds             []CovalentBond `json:"bonds,omitempty"`
	Alignments        []alignmentRef `json:"alignments,omitempty"`
	RecyclingSteps    int            `json:"recycling_steps"`
	SamplingSteps     int            `json:"sampling_steps"`
	DiffusionSamples  int            `json:"diffusion_samples"`
	StepScale         float64        `json:"step_scale,omitempty"`
	WithoutPotentials bool           `json:"without_potentials,omitempty"`
}

type alignmentRef struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

func (c *HTTPClient) PredictStructure(ctx context.Context, req StructureRequest) (*Result, error) {
	return c.predict(ctx, predictPayload{
		Polymers:         []Polymer{{ID: "A", MoleculeType: "protein", Sequence: req.Sequence}},
		RecyclingSteps:   req.RecyclingSteps,
		SamplingSteps:    req.SamplingSteps,
		DiffusionSamples: req.DiffusionSamples,
	})
}

func (c *HTTPClient) PredictWithAlignment(ctx context.Context, req AlignmentRequest) (*Result, error) {
	refs := make([]alignmentRef, 0, len(req.Alignments))
	for _, a := range req.Alignments {
		content, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("reading alignment %s: %w", a.Path, err)
		}
		refs = append(refs, alignmentRef{Format: a.Format, Content: string(content)})
	}
	return c.predict(ctx, predictPayload{
		Polymers:         []Polymer{{ID: "A", MoleculeType: "protein", Sequence: req.Sequence}},
		Alignments:       refs,
		RecyclingSteps:   req.RecyclingSteps,
		SamplingSteps:    req.SamplingSteps,
		DiffusionSamples: req.DiffusionSamples,
	})
}

func (c *HTTPClient) PredictLigandComplex(ctx context.Context, req LigandRequest) (*Result, error) {
	return c.predict(ctx, predictPayload{
		Polymers:         []Polymer{{ID: "A", MoleculeType: "protein", Sequence: req.ProteinSequence}},
		Ligands:          []Ligand{{ID: "LIG", SMILES: req.LigandSMILES}},
		RecyclingSteps:   req.RecyclingSteps,
		SamplingSteps:    req.SamplingSteps,
		DiffusionSamples: req.DiffusionSamples,
	})
}

func (c *HTTPClient) PredictCovalentComplex(ctx context.Context, req CovalentRequest) (*Result, error) {
	return c.predict(ctx, predictPayload{
		Polymers:         []Polymer{{ID: "A", MoleculeType: "protein", Sequence: req.ProteinSequence}},
		Ligands:          []Ligand{{ID: "LIG", CCD: req.LigandCCD}},
		Bonds:            req.Bonds,
		RecyclingSteps:   req.RecyclingSteps,
		SamplingSteps:    req.SamplingSteps,
		DiffusionSamples: req.DiffusionSamples,
	})
}

func (c *HTTPClient) PredictPolymerComplex(ctx context.Context, req PolymerComplexRequest) (*Result, error) {
	var polymers []Polymer
	for i, seq := range req.ProteinSequences {
		polymers = append(polymers, Polymer{ID: chainID(i), MoleculeType: "protein", Sequence: seq})
	}
	for i, seq := range req.DNASequences {
		polymers = append(polymers, Polymer{ID: chainID(len(req.ProteinSequences) + i), MoleculeType: "dna", Sequence: seq})
	}
	return c.predict(ctx, predictPayload{
		Polymers:         polymers,
		RecyclingSteps:   req.RecyclingSteps,
		SamplingSteps:    req.SamplingSteps,
		DiffusionSamples: req.DiffusionSamples,
	})
}

func (c *HTTPClient) PredictFromConfig(ctx context.Context, req ConfigRequest) (*Result, error) {
	pr, err := LoadConfig(req.Path)
	if err != nil {
		return nil, err
	}
	pr.Params = req.Params
	return c.Predict(ctx, *pr)
}

func (c *HTTPClient) Predict(ctx context.Context, req PredictionRequest) (*Result, error) {
	return c.predict(ctx, predictPayload{
		Polymers:          req.Polymers,
		Ligands:           req.Ligands,
		Bonds:             req.Bonds,
		RecyclingSteps:    req.RecyclingSteps,
		SamplingSteps:     req.SamplingSteps,
		DiffusionSamples:  req.DiffusionSamples,
		StepScale:         req.StepScale,
		WithoutPotentials: req.WithoutPotentials,
	})
}

// HealthCheck probes the local readiness endpoint. Hosted endpoints do not
// expose one, so the status comes back unknown rather than as an error.
func (c *HTTPClient) HealthCheck(ctx context.Context) (*Health, error) {
	if c.endpointType == EndpointHosted {
		return &Health{Status: "unknown", Note: "health probe not supported on hosted endpoints"}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health/ready", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &Health{Status: "error", Note: resp.Status}, nil
	}
	return &Health{Status: "healthy"}, nil
}

func (c *HTTPClient) predict(ctx context.Context, payload predictPayload) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.endpointType == EndpointHosted && c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("reading prediction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// The status line is part of the message so rate-limit responses
		// ("429 Too Many Requests") stay classifiable upstream.
		return nil, fmt.Errorf("prediction failed: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding prediction response: %w", err)
	}
	return &result, nil
}

// chainID maps 0 -> "A", 1 -> "B", wrapping after "Z".
func chainID(i int) string {
	return string(rune('A' + i%26))
}
