package tfstate

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// A SyntaxError is returned when the input bytes are not a well formed state
// document.
type SyntaxError struct {
	err error
}

func (e *SyntaxError) Error() string { return e.err.Error() }

// Cause returns the underlying decode error.
func (e *SyntaxError) Cause() error { return e.err }

// An UnsupportedVersionError is returned when the document declares a format
// version the reader does not support, or no version at all.
type UnsupportedVersionError struct {
	// Version is the version as written in the document. Empty when the
	// field was not set.
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	if e.Version == "" {
		return "state format version not set"
	}
	return fmt.Sprintf("unsupported state format version %s", e.Version)
}

type jsonDocument struct {
	Version          json.Number    `json:"version"`
	TerraformVersion string         `json:"terraform_version"`
	Resources        []jsonResource `json:"resources"`
}

type jsonResource struct {
	Module    string         `json:"module"`
	Mode      string         `json:"mode"`
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	Instances []jsonInstance `json:"instances"`
}

type jsonInstance struct {
	IndexKey       json.RawMessage   `json:"index_key"`
	Attributes     json.RawMessage   `json:"attributes"`
	AttributesFlat map[string]string `json:"attributes_flat"`
	Dependencies   []string          `json:"dependencies"`
	DependsOn      []string          `json:"depends_on"`
}

// Read parses a state document from raw bytes.
//
// The version declared in the document must match FormatVersion; older or
// newer documents are rejected with UnsupportedVersionError rather than
// decoded on a guess. A document without resources is valid and yields an
// empty Document.
func Read(src []byte) (*Document, error) {
	var raw jsonDocument
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, &SyntaxError{err: errors.Wrap(err, "decode state")}
	}

	if string(raw.Version) != strconv.Itoa(FormatVersion) {
		return nil, &UnsupportedVersionError{Version: string(raw.Version)}
	}

	doc := &Document{
		FormatVersion:    FormatVersion,
		TerraformVersion: raw.TerraformVersion,
	}
	for _, r := range raw.Resources {
		block := ResourceBlock{
			Module: r.Module,
			Mode:   r.Mode,
			Type:   r.Type,
			Name:   r.Name,
		}
		for _, i := range r.Instances {
			inst, err := readInstance(i)
			if err != nil {
				return nil, &SyntaxError{err: err}
			}
			block.Instances = append(block.Instances, inst)
		}
		doc.Resources = append(doc.Resources, block)
	}
	return doc, nil
}

func readInstance(raw jsonInstance) (Instance, error) {
	inst := Instance{
		Attributes: raw.Attributes,
		DependsOn:  raw.Dependencies,
	}
	if inst.DependsOn == nil {
		inst.DependsOn = raw.DependsOn
	}
	if inst.Attributes == nil && raw.AttributesFlat != nil {
		b, err := json.Marshal(raw.AttributesFlat)
		if err != nil {
			return Instance{}, errors.Wrap(err, "flat attributes")
		}
		inst.Attributes = b
	}

	key, err := readIndexKey(raw.IndexKey)
	if err != nil {
		return Instance{}, err
	}
	inst.IndexKey = key
	return inst, nil
}

func readIndexKey(raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return nil, errors.Errorf("invalid index key %s", raw)
}
