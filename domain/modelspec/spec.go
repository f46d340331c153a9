// Package modelspec holds the typed modelling configuration sent to the FaaS
// API, its documented default template and the rendering into the array-of-one
// wire shape the remote (R based) schema expects.
package modelspec

import "sort"

// Wire keys of the modelling configuration
const (
	KeyLog              = "log"
	KeySeasD            = "seas.d"
	KeyNBest            = "n_best"
	KeyAccuracyCrit     = "accuracy_crit"
	KeyInfoCrit         = "info_crit"
	KeyExclusions       = "exclusions"
	KeyGoldenVariables  = "golden_variables"
	KeyFillForecast     = "fill_forecast"
	KeyCVSummary        = "cv_summary"
	KeySelectionMethods = "selection_methods"
	KeyLags             = "lags"
	KeyAllowDrift       = "allowdrift"
	KeyUserModel        = "user_model"

	KeyLasso          = "lasso"
	KeyRF             = "rf"
	KeyCorr           = "corr"
	KeyApplyCollinear = "apply.collinear"

	// LagsAll is the wildcard lag key expanded to every explanatory variable
	LagsAll = "all"
)

// TemplateKeys lists every top-level key present after ApplyDefaults
var TemplateKeys = []string{
	KeyLog, KeySeasD, KeyNBest, KeyAccuracyCrit, KeyInfoCrit, KeyExclusions,
	KeyGoldenVariables, KeyFillForecast, KeyCVSummary, KeySelectionMethods,
	KeyLags, KeyAllowDrift, KeyUserModel,
}

// ModelSpec is a partially or fully specified modelling configuration.
// A nil field means "not given by the caller".
type ModelSpec struct {
	Log              *bool
	SeasD            *bool
	NBest            *int
	AccuracyCrit     *string
	InfoCrit         *string
	Exclusions       [][]ExclusionItem
	GoldenVariables  []string
	FillForecast     *bool
	CVSummary        *string
	SelectionMethods *SelectionMethods
	Lags             map[string][]int
	AllowDrift       *bool
	UserModel        [][]string

	// Extra keeps options this client has no typed field for; they are sent
	// wrapped as one-element arrays like every other scalar option.
	Extra map[string]interface{}
}

// SelectionMethods configures variable selection
type SelectionMethods struct {
	Lasso          *bool
	RF             *bool
	Corr           *bool
	ApplyCollinear *Collinear
	Extra          map[string]interface{}
}

// Collinear is either a boolean switch or an explicit method list
type Collinear struct {
	Flag    *bool
	Methods []string
}

// ExclusionItem is a single variable name or a nested group of names
type ExclusionItem struct {
	Name  string
	Group []string
}

// Name builds a single-variable exclusion item
func Name(name string) ExclusionItem {
	return ExclusionItem{Name: name}
}

// Group builds a nested exclusion item
func Group(names ...string) ExclusionItem {
	return ExclusionItem{Group: append([]string{}, names...)}
}

// IsGroup reports whether the item is a nested list
func (e ExclusionItem) IsGroup() bool {
	return e.Group != nil
}

// CollinearFlag builds a boolean apply.collinear setting
func CollinearFlag(enabled bool) *Collinear {
	return &Collinear{Flag: &enabled}
}

// CollinearMethods builds an explicit apply.collinear method list
func CollinearMethods(methods ...string) *Collinear {
	return &Collinear{Methods: append([]string{}, methods...)}
}

// Resolve turns the setting into the method list sent on the wire
func (c *Collinear) Resolve() []string {
	if c == nil {
		return append([]string{}, DefaultCollinearMethods...)
	}
	if c.Flag != nil {
		if *c.Flag {
			return append([]string{}, DefaultCollinearMethods...)
		}
		return []string{}
	}
	if c.Methods == nil {
		return []string{}
	}
	return append([]string{}, c.Methods...)
}

// Bool, Int and String return pointers for building specs literally
func Bool(v bool) *bool       { return &v }
func Int(v int) *int          { return &v }
func String(v string) *string { return &v }

// Clone returns a deep copy
func (s ModelSpec) Clone() ModelSpec {
	out := s
	out.Log = cloneBool(s.Log)
	out.SeasD = cloneBool(s.SeasD)
	out.FillForecast = cloneBool(s.FillForecast)
	out.AllowDrift = cloneBool(s.AllowDrift)
	if s.NBest != nil {
		out.NBest = Int(*s.NBest)
	}
	out.AccuracyCrit = cloneString(s.AccuracyCrit)
	out.InfoCrit = cloneString(s.InfoCrit)
	out.CVSummary = cloneString(s.CVSummary)

	if s.Exclusions != nil {
		out.Exclusions = make([][]ExclusionItem, len(s.Exclusions))
		for i, group := range s.Exclusions {
			out.Exclusions[i] = make([]ExclusionItem, len(group))
			for j, item := range group {
				out.Exclusions[i][j] = item
				if item.Group != nil {
					out.Exclusions[i][j].Group = append([]string{}, item.Group...)
				}
			}
		}
	}
	if s.GoldenVariables != nil {
		out.GoldenVariables = append([]string{}, s.GoldenVariables...)
	}
	if s.Lags != nil {
		out.Lags = make(map[string][]int, len(s.Lags))
		for k, v := range s.Lags {
			out.Lags[k] = append([]int{}, v...)
		}
	}
	if s.UserModel != nil {
		out.UserModel = make([][]string, len(s.UserModel))
		for i, m := range s.UserModel {
			out.UserModel[i] = append([]string{}, m...)
		}
	}
	if s.SelectionMethods != nil {
		sm := *s.SelectionMethods
		sm.Lasso = cloneBool(sm.Lasso)
		sm.RF = cloneBool(sm.RF)
		sm.Corr = cloneBool(sm.Corr)
		if sm.ApplyCollinear != nil {
			c := Collinear{Flag: cloneBool(sm.ApplyCollinear.Flag)}
			if sm.ApplyCollinear.Methods != nil {
				c.Methods = append([]string{}, sm.ApplyCollinear.Methods...)
			}
			sm.ApplyCollinear = &c
		}
		sm.Extra = cloneExtra(sm.Extra)
		out.SelectionMethods = &sm
	}
	out.Extra = cloneExtra(s.Extra)
	return out
}

// MapIdentifiers returns a copy where every variable reference
// (golden_variables, exclusions, lags keys, user_model) went through fn.
// Lag keys that collide after mapping keep the lexically last source key.
func (s ModelSpec) MapIdentifiers(fn func(string) string) ModelSpec {
	out := s.Clone()

	for i, v := range out.GoldenVariables {
		out.GoldenVariables[i] = fn(v)
	}
	for i := range out.Exclusions {
		for j, item := range out.Exclusions[i] {
			if item.IsGroup() {
				for k, name := range item.Group {
					out.Exclusions[i][j].Group[k] = fn(name)
				}
				continue
			}
			out.Exclusions[i][j].Name = fn(item.Name)
		}
	}
	if out.Lags != nil {
		keys := make([]string, 0, len(out.Lags))
		for k := range out.Lags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		mapped := make(map[string][]int, len(out.Lags))
		for _, k := range keys {
			mapped[fn(k)] = out.Lags[k]
		}
		out.Lags = mapped
	}
	for i := range out.UserModel {
		for j, name := range out.UserModel[i] {
			out.UserModel[i][j] = fn(name)
		}
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return Bool(*b)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return String(*s)
}

func cloneExtra(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
