package domain

// TreatmentOption is one enabled entry in the treatment menu for the current
// assessment. Keys are stable identifiers the CLI and TUI act on.
type TreatmentOption struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Kind     InterventionKind `json:"kind"`
	Guidance string           `json:"guidance,omitempty"`
}

// AvailableTreatments gates the medication and procedure menu on the
// assessed combination. An empty slice means the phase offers guidance only.
func AvailableTreatments(phase Phase, ctx DecisionContext) []TreatmentOption {
	switch phase {
	case PhaseBradyTreatment:
		return bradyTreatments(ctx)
	case PhaseTachyTreatment:
		return tachyTreatments(ctx)
	default:
		return nil
	}
}

func bradyTreatments(ctx DecisionContext) []TreatmentOption {
	if ctx.Stability == Stable {
		return []TreatmentOption{
			{Key: "observe", Label: "Monitor and observe", Kind: KindGuidance,
				Guidance: "Identify and treat the underlying cause; no drug therapy while perfusion holds"},
		}
	}
	if ctx.PatientGroup == GroupPediatric {
		return []TreatmentOption{
			{Key: "cpr_check", Label: "Assess for CPR", Kind: KindGuidance,
				Guidance: "Start compressions if HR < 60/min with poor perfusion despite oxygenation; switch to arrest if pulseless"},
			{Key: "epi_infusion", Label: "Epinephrine infusion", Kind: KindEpiInfusion},
			{Key: "atropine", Label: "Atropine", Kind: KindAtropine,
				Guidance: "For increased vagal tone or primary AV block"},
			{Key: "pacing", Label: "Transcutaneous pacing", Kind: KindPacing},
		}
	}
	return []TreatmentOption{
		{Key: "atropine", Label: "Atropine", Kind: KindAtropine},
		{Key: "pacing", Label: "Transcutaneous pacing", Kind: KindPacing},
		{Key: "epi_infusion", Label: "Epinephrine infusion", Kind: KindEpiInfusion},
	}
}

func tachyTreatments(ctx DecisionContext) []TreatmentOption {
	if ctx.SinusVsSVT == ProbableSinus {
		return []TreatmentOption{
			{Key: "underlying_cause", Label: "Treat underlying cause", Kind: KindGuidance,
				Guidance: "Probable sinus tachycardia: search for fever, hypovolemia, pain; no antiarrhythmic therapy"},
		}
	}
	if ctx.Stability == Unstable {
		return []TreatmentOption{
			{Key: "cardioversion", Label: "Synchronized cardioversion", Kind: KindCardioversion},
		}
	}
	narrow := ctx.QRSWidth == QRSNarrow
	regular := ctx.RhythmRegular != nil && *ctx.RhythmRegular
	switch {
	case narrow && regular:
		return []TreatmentOption{
			{Key: "vagal", Label: "Vagal maneuvers", Kind: KindVagalManeuvers},
			{Key: "adenosine", Label: "Adenosine", Kind: KindAdenosine},
		}
	case narrow:
		return []TreatmentOption{
			{Key: "rate_control", Label: "Rate control", Kind: KindGuidance,
				Guidance: "Irregular narrow-complex: rate control and expert consultation; adenosine is not indicated"},
		}
	case regular:
		options := []TreatmentOption{}
		if ctx.Monomorphic != nil && *ctx.Monomorphic {
			options = append(options, TreatmentOption{Key: "adenosine", Label: "Adenosine", Kind: KindAdenosine,
				Guidance: "Consider only if regular and monomorphic"})
		}
		return append(options,
			TreatmentOption{Key: "procainamide", Label: "Procainamide", Kind: KindProcainamide},
			TreatmentOption{Key: "amiodarone", Label: "Amiodarone", Kind: KindAmiodarone},
		)
	default:
		return []TreatmentOption{
			{Key: "expert", Label: "Expert consultation", Kind: KindGuidance,
				Guidance: "Irregular wide-complex: expert consultation; avoid AV-nodal blockers"},
		}
	}
}

// TreatmentAllowed reports whether kind is in the gated menu.
func TreatmentAllowed(phase Phase, ctx DecisionContext, kind InterventionKind) bool {
	for _, option := range AvailableTreatments(phase, ctx) {
		if option.Kind == kind {
			return true
		}
	}
	return false
}
