// ABOUTME: Job and Pipeline are the two stage kinds in the recursive stage tree;
// ABOUTME: Node is their tagged-union interface, dispatched on a JSON "type" field.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/2389-research/conveyor/status"
	"github.com/google/uuid"
)

// Node is a stage: either a Job, a mutable Job, or a nested Pipeline.
// Implementations are immutable values; every mutation is a copy.
type Node interface {
	NodeType() string
	stageSeal()
}

// Parameters maps a job's argument names to values. A value is either a
// Primitive, a []Primitive, or a nested Node — never any other shape. A
// nil Parameters means the job declared no parameters at all (JSON null),
// distinct from an empty-but-present map.
type Parameters map[string]any

// Job is a single invocation of one registered handler.
type Job struct {
	ID         uuid.UUID
	Name       string
	Function   string
	Mutable    bool // true => "mutable_job", false => "job"
	Parameters Parameters
}

func (j Job) NodeType() string {
	if j.Mutable {
		return "mutable_job"
	}
	return "job"
}
func (Job) stageSeal() {}

// WithParameters returns a copy of j with Parameters replaced.
func (j Job) WithParameters(p Parameters) Job {
	j.Parameters = p
	return j
}

// Pipeline is an ordered sequence of stages plus its restart policy and
// current position.
type Pipeline struct {
	ID                 uuid.UUID
	Name               string
	Stages             []Node
	CurrStage          int
	Status             status.Status
	MaxAllowedRestarts int
	CurrRestarts       int
}

func (Pipeline) NodeType() string { return "pipeline" }
func (Pipeline) stageSeal()       {}

// WithCurrStage returns a copy of p with CurrStage replaced. Stages is
// shared (never mutated by either copy), so this is a cheap shallow copy.
func (p Pipeline) WithCurrStage(n int) Pipeline {
	p.CurrStage = n
	return p
}

// WithRestart returns a copy of p reset to stage 0, READY, with
// CurrRestarts incremented by one.
func (p Pipeline) WithRestart() Pipeline {
	p.CurrStage = 0
	p.Status = status.READY
	p.CurrRestarts++
	return p
}

// WithPolicy returns a copy of p with its restart policy fields replaced,
// used by a mutable-flavor handler that rewrites its own pipeline node.
func (p Pipeline) WithPolicy(maxAllowedRestarts, currRestarts int) Pipeline {
	p.MaxAllowedRestarts = maxAllowedRestarts
	p.CurrRestarts = currRestarts
	return p
}

// defaultJobName and defaultPipelineName mirror original_source's Pydantic
// field defaults ('some job' / 'pipeline').
const (
	defaultJobName      = "some job"
	defaultPipelineName = "pipeline"
)

// --- decoding ---

type nodeHeader struct {
	Type string `json:"type"`
}

// decodeNode dispatches on the "type" discriminator.
func decodeNode(raw json.RawMessage) (Node, error) {
	var h nodeHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode stage header: %w", err)
	}
	switch h.Type {
	case "job":
		j, err := decodeJob(raw, false)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "mutable_job":
		j, err := decodeJob(raw, true)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "pipeline":
		return decodePipeline(raw)
	case "":
		return nil, &ValidationError{Field: "type", Message: "missing discriminator (expected job, mutable_job, or pipeline)"}
	default:
		return nil, &ValidationError{Field: "type", Message: fmt.Sprintf("unknown stage type %q", h.Type)}
	}
}

type jobJSON struct {
	Name       string          `json:"name"`
	ID         *uuid.UUID      `json:"id,omitempty"`
	Function   string          `json:"function"`
	Parameters json.RawMessage `json:"parameters"`
}

func decodeJob(raw json.RawMessage, mutable bool) (Job, error) {
	var j jobJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if j.Function == "" {
		return Job{}, &ValidationError{Field: "function", Message: "required"}
	}
	name := j.Name
	if name == "" {
		name = defaultJobName
	}
	id := j.ID
	var idVal uuid.UUID
	if id == nil {
		idVal = uuid.New()
	} else {
		idVal = *id
	}
	params, err := decodeParameters(j.Parameters)
	if err != nil {
		return Job{}, fmt.Errorf("decode job %q parameters: %w", name, err)
	}
	return Job{
		ID:         idVal,
		Name:       name,
		Function:   j.Function,
		Mutable:    mutable,
		Parameters: params,
	}, nil
}

type pipelineJSON struct {
	Name               string            `json:"name"`
	ID                 *uuid.UUID        `json:"id,omitempty"`
	CurrStage          *int              `json:"curr_stage,omitempty"`
	Status             *int              `json:"status,omitempty"`
	MaxAllowedRestarts *int              `json:"max_allowed_restarts,omitempty"`
	CurrRestarts       *int              `json:"curr_restarts,omitempty"`
	Stages             []json.RawMessage `json:"stages"`
}

func decodePipeline(raw json.RawMessage) (Pipeline, error) {
	var p pipelineJSON
	if err := json.Unmarshal(raw, &p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline: %w", err)
	}
	name := p.Name
	if name == "" {
		name = defaultPipelineName
	}
	var idVal uuid.UUID
	if p.ID == nil {
		idVal = uuid.New()
	} else {
		idVal = *p.ID
	}
	currStage := 0
	if p.CurrStage != nil {
		currStage = *p.CurrStage
	}
	st := status.READY
	if p.Status != nil {
		st = status.Status(*p.Status)
	}
	maxRestarts := 0
	if p.MaxAllowedRestarts != nil {
		maxRestarts = *p.MaxAllowedRestarts
	}
	currRestarts := 0
	if p.CurrRestarts != nil {
		currRestarts = *p.CurrRestarts
	}

	stages := make([]Node, 0, len(p.Stages))
	for i, raw := range p.Stages {
		n, err := decodeNode(raw)
		if err != nil {
			return Pipeline{}, fmt.Errorf("decode stage %d of pipeline %q: %w", i, name, err)
		}
		stages = append(stages, n)
	}

	pipe := Pipeline{
		ID:                 idVal,
		Name:               name,
		Stages:             stages,
		CurrStage:          currStage,
		Status:             st,
		MaxAllowedRestarts: maxRestarts,
		CurrRestarts:       currRestarts,
	}
	if err := validatePipelineShape(pipe); err != nil {
		return Pipeline{}, err
	}
	return pipe, nil
}

// decodeParameters decodes a job's "parameters" field: JSON null means no
// parameters at all (nil map); otherwise every key maps to a Primitive, a
// []Primitive, or a nested Node.
func decodeParameters(raw json.RawMessage) (Parameters, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rawMap); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	params := make(Parameters, len(rawMap))
	for k, v := range rawMap {
		val, err := decodeParamValue(v)
		if err != nil {
			return nil, fmt.Errorf("decode parameter %q: %w", k, err)
		}
		params[k] = val
	}
	return params, nil
}

func decodeParamValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var rawList []json.RawMessage
		if err := json.Unmarshal(trimmed, &rawList); err != nil {
			return nil, fmt.Errorf("decode list parameter: %w", err)
		}
		list := make([]Primitive, 0, len(rawList))
		for _, item := range rawList {
			p, err := decodePrimitive(item)
			if err != nil {
				return nil, err
			}
			list = append(list, p)
		}
		return list, nil
	case '{':
		var h nodeHeader
		if err := json.Unmarshal(trimmed, &h); err != nil {
			return nil, fmt.Errorf("decode node parameter: %w", err)
		}
		if h.Type == "" {
			return nil, &ValidationError{Field: "parameters", Message: "nested object parameter must declare a type (job, mutable_job, or pipeline)"}
		}
		return decodeNode(trimmed)
	default:
		return decodePrimitive(trimmed)
	}
}

// --- encoding ---

// MarshalJSON serializes a Job/mutable Job back to its wire shape,
// including its function as the dotted name (never a live handle).
func (j Job) MarshalJSON() ([]byte, error) {
	params, err := encodeParameters(j.Parameters)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Type       string          `json:"type"`
		Name       string          `json:"name"`
		ID         uuid.UUID       `json:"id"`
		Function   string          `json:"function"`
		Parameters json.RawMessage `json:"parameters"`
	}{
		Type:       j.NodeType(),
		Name:       j.Name,
		ID:         j.ID,
		Function:   j.Function,
		Parameters: params,
	})
}

// MarshalJSON serializes a Pipeline back to its wire shape.
func (p Pipeline) MarshalJSON() ([]byte, error) {
	stages := make([]json.RawMessage, len(p.Stages))
	for i, s := range p.Stages {
		raw, err := MarshalNode(s)
		if err != nil {
			return nil, fmt.Errorf("marshal stage %d: %w", i, err)
		}
		stages[i] = raw
	}
	return json.Marshal(struct {
		Type               string            `json:"type"`
		Name               string            `json:"name"`
		ID                 uuid.UUID         `json:"id"`
		CurrStage          int               `json:"curr_stage"`
		Status             int               `json:"status"`
		MaxAllowedRestarts int               `json:"max_allowed_restarts"`
		CurrRestarts       int               `json:"curr_restarts"`
		Stages             []json.RawMessage `json:"stages"`
	}{
		Type:               p.NodeType(),
		Name:               p.Name,
		ID:                 p.ID,
		CurrStage:          p.CurrStage,
		Status:             int(p.Status),
		MaxAllowedRestarts: p.MaxAllowedRestarts,
		CurrRestarts:       p.CurrRestarts,
		Stages:             stages,
	})
}

// MarshalNode serializes any Node (Job or Pipeline) to its tagged JSON form.
func MarshalNode(n Node) (json.RawMessage, error) {
	switch v := n.(type) {
	case Job:
		return v.MarshalJSON()
	case Pipeline:
		return v.MarshalJSON()
	default:
		return nil, fmt.Errorf("unmarshalable node type %T", n)
	}
}

func encodeParameters(p Parameters) (json.RawMessage, error) {
	if p == nil {
		return json.RawMessage("null"), nil
	}
	out := make(map[string]json.RawMessage, len(p))
	for k, v := range p {
		raw, err := encodeParamValue(v)
		if err != nil {
			return nil, fmt.Errorf("encode parameter %q: %w", k, err)
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

func encodeParamValue(v any) (json.RawMessage, error) {
	switch val := v.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case []Primitive:
		items := make([]json.RawMessage, len(val))
		for i, item := range val {
			raw, err := encodePrimitive(item)
			if err != nil {
				return nil, err
			}
			items[i] = raw
		}
		return json.Marshal(items)
	case Node:
		return MarshalNode(val)
	default:
		return encodePrimitive(val)
	}
}
