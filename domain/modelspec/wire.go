package modelspec

// Wire renders the model spec in the shape the FaaS schema expects: scalars become
// one-element arrays, while lags, exclusions, golden_variables, user_model and
// apply.collinear keep their native nesting. Fields left nil are omitted, so
// call ApplyDefaults first to get every template key.
func (s ModelSpec) Wire() map[string]interface{} {
	out := make(map[string]interface{}, len(TemplateKeys)+len(s.Extra))

	for k, v := range s.Extra {
		if isTemplateKey(k) {
			continue
		}
		out[k] = []interface{}{v}
	}

	putBool(out, KeyLog, s.Log)
	putBool(out, KeySeasD, s.SeasD)
	if s.NBest != nil {
		out[KeyNBest] = []int{*s.NBest}
	}
	putString(out, KeyAccuracyCrit, s.AccuracyCrit)
	putString(out, KeyInfoCrit, s.InfoCrit)
	putBool(out, KeyFillForecast, s.FillForecast)
	putString(out, KeyCVSummary, s.CVSummary)
	putBool(out, KeyAllowDrift, s.AllowDrift)

	if s.Exclusions != nil {
		groups := make([]interface{}, len(s.Exclusions))
		for i, group := range s.Exclusions {
			items := make([]interface{}, len(group))
			for j, item := range group {
				if item.IsGroup() {
					items[j] = append([]string{}, item.Group...)
				} else {
					items[j] = item.Name
				}
			}
			groups[i] = items
		}
		out[KeyExclusions] = groups
	}

	if s.GoldenVariables != nil {
		out[KeyGoldenVariables] = append([]string{}, s.GoldenVariables...)
	}

	if s.Lags != nil {
		lags := make(map[string][]int, len(s.Lags))
		for k, v := range s.Lags {
			lags[k] = append([]int{}, v...)
		}
		out[KeyLags] = lags
	}

	if s.UserModel != nil {
		models := make([][]string, len(s.UserModel))
		for i, m := range s.UserModel {
			models[i] = append([]string{}, m...)
		}
		out[KeyUserModel] = models
	}

	if sm := s.SelectionMethods; sm != nil {
		methods := make(map[string]interface{}, 4+len(sm.Extra))
		for k, v := range sm.Extra {
			methods[k] = []interface{}{v}
		}
		putBool(methods, KeyLasso, sm.Lasso)
		putBool(methods, KeyRF, sm.RF)
		putBool(methods, KeyCorr, sm.Corr)
		if sm.ApplyCollinear != nil {
			methods[KeyApplyCollinear] = sm.ApplyCollinear.Resolve()
		}
		out[KeySelectionMethods] = methods
	}

	return out
}

func putBool(m map[string]interface{}, key string, v *bool) {
	if v != nil {
		m[key] = []bool{*v}
	}
}

func putString(m map[string]interface{}, key string, v *string) {
	if v != nil {
		m[key] = []string{*v}
	}
}

func isTemplateKey(key string) bool {
	for _, k := range TemplateKeys {
		if k == key {
			return true
		}
	}
	return false
}
