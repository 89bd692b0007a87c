package schemadoc

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/oamap"
)

// DecodeJSON parses a JSON schema document.
func DecodeJSON(data []byte) (oamap.Schema, error) {
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return Build(&n)
}

// EncodeJSON renders s as an indented JSON document.
func EncodeJSON(s oamap.Schema) ([]byte, error) {
	return json.MarshalIndent(FromSchema(s), "", "  ")
}

// DecodeYAML parses every document of a multi-document YAML stream. Empty
// documents are skipped.
func DecodeYAML(data []byte) ([]oamap.Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []oamap.Schema
	for {
		var n *Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if n == nil {
			continue
		}
		s, err := Build(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// EncodeYAML renders schemas as a multi-document YAML stream.
func EncodeYAML(schemas ...oamap.Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, s := range schemas {
		if err := enc.Encode(FromSchema(s)); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFile loads a schema document, choosing YAML for .yaml/.yml files and
// JSON otherwise. For YAML streams the first document is used.
func ReadFile(path string) (oamap.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isYAML(path) {
		return DecodeJSON(data)
	}
	all, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errors.New("schemadoc: no schema document in " + path)
	}
	return all[0], nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
