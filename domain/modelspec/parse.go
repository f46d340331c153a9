package modelspec

import (
	"fmt"
	"math"

	"gofaas/internal/errors"
)

// Parse converts a loosely-typed configuration (as decoded from YAML or JSON)
// into a ModelSpec. Unknown keys land in Extra untouched. A known key holding
// a value of the wrong shape is an INVALID_INPUT error.
func Parse(raw map[string]interface{}) (ModelSpec, error) {
	var spec ModelSpec
	var err error

	for key, value := range raw {
		switch key {
		case KeyLog:
			spec.Log, err = parseBool(key, value)
		case KeySeasD:
			spec.SeasD, err = parseBool(key, value)
		case KeyFillForecast:
			spec.FillForecast, err = parseBool(key, value)
		case KeyAllowDrift:
			spec.AllowDrift, err = parseBool(key, value)
		case KeyNBest:
			var n int
			n, err = parseInt(key, value)
			spec.NBest = Int(n)
		case KeyAccuracyCrit:
			spec.AccuracyCrit, err = parseString(key, value)
		case KeyInfoCrit:
			spec.InfoCrit, err = parseString(key, value)
		case KeyCVSummary:
			spec.CVSummary, err = parseString(key, value)
		case KeyGoldenVariables:
			spec.GoldenVariables, err = parseGoldenVariables(value)
		case KeyExclusions:
			spec.Exclusions, err = parseExclusions(value)
		case KeyLags:
			spec.Lags, err = parseLags(value)
		case KeyUserModel:
			spec.UserModel, err = parseUserModel(value)
		case KeySelectionMethods:
			spec.SelectionMethods, err = parseSelectionMethods(value)
		default:
			if spec.Extra == nil {
				spec.Extra = make(map[string]interface{})
			}
			spec.Extra[key] = value
		}
		if err != nil {
			return ModelSpec{}, err
		}
	}

	return spec, nil
}

func parseBool(key string, value interface{}) (*bool, error) {
	b, ok := unwrapSingle(value).(bool)
	if !ok {
		return nil, errors.InvalidInputf("model_spec %s must be a boolean, got %v", key, value)
	}
	return Bool(b), nil
}

func parseString(key string, value interface{}) (*string, error) {
	s, ok := unwrapSingle(value).(string)
	if !ok {
		return nil, errors.InvalidInputf("model_spec %s must be a string, got %v", key, value)
	}
	return String(s), nil
}

func parseInt(key string, value interface{}) (int, error) {
	switch n := unwrapSingle(value).(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, errors.InvalidInputf("model_spec %s must be an integer, got %v", key, value)
}

// unwrapSingle accepts a value already given in its one-element wire form
func unwrapSingle(value interface{}) interface{} {
	if list, ok := value.([]interface{}); ok && len(list) == 1 {
		return list[0]
	}
	return value
}

func parseStringList(key string, value interface{}) ([]string, error) {
	list, ok := value.([]interface{})
	if !ok {
		if strs, ok := value.([]string); ok {
			return append([]string{}, strs...), nil
		}
		return nil, errors.InvalidInputf("model_spec %s must be a list of variable names, got %v", key, value)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.InvalidInputf("model_spec %s[%d] must be a variable name, got %v", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseGoldenVariables(value interface{}) ([]string, error) {
	// an empty mapping is what R/JSON round-trips produce for an empty list
	if m, ok := value.(map[string]interface{}); ok && len(m) == 0 {
		return []string{}, nil
	}
	if value == nil {
		return []string{}, nil
	}
	return parseStringList(KeyGoldenVariables, value)
}

func parseExclusions(value interface{}) ([][]ExclusionItem, error) {
	groups, ok := value.([]interface{})
	if !ok {
		return nil, errors.InvalidInputf("model_spec exclusions must be a list of groups, got %v", value)
	}
	out := make([][]ExclusionItem, 0, len(groups))
	for i, g := range groups {
		items, ok := g.([]interface{})
		if !ok {
			return nil, errors.InvalidInputf("model_spec exclusions[%d] must be a list, got %v", i, g)
		}
		group := make([]ExclusionItem, 0, len(items))
		for j, item := range items {
			switch v := item.(type) {
			case string:
				group = append(group, Name(v))
			case []interface{}:
				names, err := parseStringList(fmt.Sprintf("exclusions[%d][%d]", i, j), v)
				if err != nil {
					return nil, err
				}
				group = append(group, Group(names...))
			default:
				return nil, errors.InvalidInputf("model_spec exclusions[%d][%d] must be a name or a list of names, got %v", i, j, item)
			}
		}
		out = append(out, group)
	}
	return out, nil
}

func parseLags(value interface{}) (map[string][]int, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.InvalidInputf("model_spec lags must be a mapping of variable to lag list, got %v", value)
	}
	out := make(map[string][]int, len(m))
	for variable, raw := range m {
		key := fmt.Sprintf("lags.%s", variable)
		list, ok := raw.([]interface{})
		if !ok {
			n, err := parseInt(key, raw)
			if err != nil {
				return nil, err
			}
			out[variable] = []int{n}
			continue
		}
		lags := make([]int, 0, len(list))
		for _, item := range list {
			n, err := parseInt(key, item)
			if err != nil {
				return nil, err
			}
			lags = append(lags, n)
		}
		out[variable] = lags
	}
	return out, nil
}

func parseUserModel(value interface{}) ([][]string, error) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, errors.InvalidInputf("model_spec user_model must be a list of variable lists, got %v", value)
	}
	out := make([][]string, 0, len(list))
	for i, m := range list {
		names, err := parseStringList(fmt.Sprintf("user_model[%d]", i), m)
		if err != nil {
			return nil, err
		}
		out = append(out, names)
	}
	return out, nil
}

func parseSelectionMethods(value interface{}) (*SelectionMethods, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.InvalidInputf("model_spec selection_methods must be a mapping, got %v", value)
	}
	sm := &SelectionMethods{}
	var err error
	for key, raw := range m {
		full := KeySelectionMethods + "." + key
		switch key {
		case KeyLasso:
			sm.Lasso, err = parseBool(full, raw)
		case KeyRF:
			sm.RF, err = parseBool(full, raw)
		case KeyCorr:
			sm.Corr, err = parseBool(full, raw)
		case KeyApplyCollinear:
			sm.ApplyCollinear, err = parseCollinear(raw)
		default:
			if sm.Extra == nil {
				sm.Extra = make(map[string]interface{})
			}
			sm.Extra[key] = raw
		}
		if err != nil {
			return nil, err
		}
	}
	return sm, nil
}

func parseCollinear(value interface{}) (*Collinear, error) {
	if b, ok := value.(bool); ok {
		return CollinearFlag(b), nil
	}
	methods, err := parseStringList(KeySelectionMethods+"."+KeyApplyCollinear, value)
	if err != nil {
		return nil, errors.InvalidInputf("model_spec selection_methods.apply.collinear must be a boolean or a list of methods, got %v", value)
	}
	return CollinearMethods(methods...), nil
}
