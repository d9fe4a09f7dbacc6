package framebook

// DefaultClassification is the documented fallback frame-role partition
// used by the justice engine when the framebook declares none.
func DefaultClassification() Classification {
	var c Classification
	c.Claim = []string{
		"LEGITIMACY_JUSTICE",
		"AUTONOMY_SELF_DETERMINATION",
		"SOLIDARITY_COMMUNITY",
	}
	c.Structure = []string{
		"ECONOMIZATION",
		"BUREAUCRATIC_ORDER",
		"EXCLUSION_OTHERING",
		"INSTITUTIONAL_LOGIC",
	}
	c.Context.Amplifying = []string{"VULNERABILITY"}
	c.Context.Dampening = []string{"NORMALIZATION"}
	return c
}

// EffectiveClassification returns the framebook's classification, or the
// documented defaults when the section is absent.
func (fb *Framebook) EffectiveClassification() Classification {
	if fb.FrameClassification.Empty() {
		return DefaultClassification()
	}
	return fb.FrameClassification
}
