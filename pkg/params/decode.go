package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/loan-schedule/pkg/apierrors"
	"gopkg.in/yaml.v3"
)

// DecodeJSON reads a JSON object into a Bag. Numbers stay json.Number so no
// precision is lost before decimal parsing.
func DecodeJSON(data []byte) (Bag, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apierrors.NewMalformed("", "empty request body")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, apierrors.NewMalformed("", fmt.Sprintf("invalid JSON: %v", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, apierrors.NewMalformed("", "unexpected data after the JSON object")
	}
	return asBag(raw)
}

// DecodeYAML reads a YAML mapping into a Bag. JSON documents are valid YAML,
// so request files may use either syntax.
func DecodeYAML(data []byte) (Bag, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apierrors.NewMalformed("", "empty request")
	}
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apierrors.NewMalformed("", fmt.Sprintf("invalid YAML: %v", err))
	}
	return asBag(normalizeYAML(raw))
}

func asBag(raw interface{}) (Bag, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, apierrors.NewMalformed("", "expected a JSON object at the top level")
	}
	return Bag(obj), nil
}

// normalizeYAML converts the map[interface{}]interface{} nodes a YAML
// decoder may produce for non-string keys into string-keyed maps.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			t[k] = normalizeYAML(item)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		for i, item := range t {
			t[i] = normalizeYAML(item)
		}
		return t
	default:
		return v
	}
}
