// Package specfile loads a model spec from a YAML or JSON file.
package specfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"gofaas/domain/modelspec"
	"gofaas/internal/errors"
)

// Load reads path and parses it into a ModelSpec. Files ending in .json are
// decoded as JSON, everything else as YAML (which also accepts JSON).
func Load(path string) (modelspec.ModelSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return modelspec.ModelSpec{}, errors.InvalidInputf("model spec file not found: %s", path)
		}
		return modelspec.ModelSpec{}, errors.Wrapf(err, "failed to read model spec %s", path)
	}

	var decoded map[string]interface{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		decoded, err = decodeJSON(raw)
	} else {
		decoded, err = decodeYAML(raw)
	}
	if err != nil {
		return modelspec.ModelSpec{}, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("%s: %w", path, err))
	}

	spec, err := modelspec.Parse(decoded)
	if err != nil {
		return modelspec.ModelSpec{}, errors.Wrapf(err, "invalid model spec %s", path)
	}
	return spec, nil
}

func decodeJSON(raw []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return out, nil
}

func decodeYAML(raw []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]interface{}{}
	}
	return normalize(out).(map[string]interface{}), nil
}

// normalize rewrites yaml.v3 output into the shapes encoding/json produces
// so Parse sees one representation
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		for k, val := range x {
			x[k] = normalize(val)
		}
		return x
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		for i, val := range x {
			x[i] = normalize(val)
		}
		return x
	default:
		return v
	}
}
