package modelspec

// DefaultCollinearMethods is used when apply.collinear is true or missing
var DefaultCollinearMethods = []string{"corr", "rf", "lasso", "no_reduction"}

// Documented defaults
const (
	DefaultLog          = true
	DefaultSeasD        = true
	DefaultNBest        = 20
	DefaultAccuracyCrit = "MAPE"
	DefaultInfoCrit     = "AIC"
	DefaultFillForecast = false
	DefaultCVSummary    = "mean"
	DefaultAllowDrift   = true
	DefaultLasso        = true
	DefaultRF           = true
	DefaultCorr         = true
)

// Template returns a fully defaulted spec
func Template() ModelSpec {
	return ModelSpec{
		Log:             Bool(DefaultLog),
		SeasD:           Bool(DefaultSeasD),
		NBest:           Int(DefaultNBest),
		AccuracyCrit:    String(DefaultAccuracyCrit),
		InfoCrit:        String(DefaultInfoCrit),
		Exclusions:      [][]ExclusionItem{{}},
		GoldenVariables: []string{},
		FillForecast:    Bool(DefaultFillForecast),
		CVSummary:       String(DefaultCVSummary),
		SelectionMethods: &SelectionMethods{
			Lasso:          Bool(DefaultLasso),
			RF:             Bool(DefaultRF),
			Corr:           Bool(DefaultCorr),
			ApplyCollinear: CollinearMethods(DefaultCollinearMethods...),
		},
		Lags:       map[string][]int{},
		AllowDrift: Bool(DefaultAllowDrift),
		UserModel:  [][]string{{}},
	}
}

// ApplyDefaults completes spec with the documented template. knownVariables
// feeds the lags "all" wildcard. The input is never modified and the call
// cannot fail: anything missing is filled in.
func ApplyDefaults(spec ModelSpec, knownVariables []string) ModelSpec {
	out := spec.Clone()
	tmpl := Template()

	if lagsAll, ok := out.Lags[LagsAll]; ok {
		for _, v := range knownVariables {
			if _, exists := out.Lags[v]; !exists {
				out.Lags[v] = append([]int{}, lagsAll...)
			}
		}
		delete(out.Lags, LagsAll)
	}

	if out.Log == nil {
		out.Log = tmpl.Log
	}
	if out.SeasD == nil {
		out.SeasD = tmpl.SeasD
	}
	if out.NBest == nil {
		out.NBest = tmpl.NBest
	}
	if out.AccuracyCrit == nil {
		out.AccuracyCrit = tmpl.AccuracyCrit
	}
	if out.InfoCrit == nil {
		out.InfoCrit = tmpl.InfoCrit
	}
	if out.Exclusions == nil {
		out.Exclusions = tmpl.Exclusions
	}
	if out.GoldenVariables == nil {
		out.GoldenVariables = tmpl.GoldenVariables
	}
	if out.FillForecast == nil {
		out.FillForecast = tmpl.FillForecast
	}
	if out.CVSummary == nil {
		out.CVSummary = tmpl.CVSummary
	}
	if out.Lags == nil {
		out.Lags = tmpl.Lags
	}
	if out.AllowDrift == nil {
		out.AllowDrift = tmpl.AllowDrift
	}
	if out.UserModel == nil {
		out.UserModel = tmpl.UserModel
	}

	if out.SelectionMethods == nil {
		out.SelectionMethods = tmpl.SelectionMethods
	} else {
		sm := out.SelectionMethods
		if sm.Lasso == nil {
			sm.Lasso = tmpl.SelectionMethods.Lasso
		}
		if sm.RF == nil {
			sm.RF = tmpl.SelectionMethods.RF
		}
		if sm.Corr == nil {
			sm.Corr = tmpl.SelectionMethods.Corr
		}
		sm.ApplyCollinear = CollinearMethods(sm.ApplyCollinear.Resolve()...)
	}

	return out
}
