package model

// Module ids for the four analytic passes.
const (
	ModuleNarrative = "narrative"
	ModulePosition  = "position"
	ModuleDiscourse = "discourse"
	ModuleAffect    = "affect"
)

// Well-known category names the engine attaches weight to. All other
// category names flow straight through from the framebook.
const (
	// Narrative pass
	TypeUndetermined = "UNDETERMINED" // sentence matched no discourse type
	PSTrajectory     = "TRAJECTORY"   // trajectory-of-suffering process structure
	PSTransformation = "TRANSFORMATION"

	// Position pass
	AgencyActive     = "ACTIVE_AGENTIVE"
	AgencyPassive    = "PASSIVE_SUFFERING"
	AgencyReflective = "MORALLY_REFLECTIVE"

	// Affect pass
	AffectAmbivalence = "AMBIVALENCE"
	AffectBodily      = "BODILY_REFERENCE"
	AffectDistancing  = "DISTANCING"
)

// Category name prefixes for derived annotation categories.
const (
	PrefixType      = "TYPE_"  // per-sentence discourse types
	PrefixPronoun   = "PRON_"  // pronoun occurrences
	PrefixTopos     = "TOPOS_" // rhetorical topics, tracked apart from frames
	PrefixSyntactic = "SYN_"   // parser-backed subject/voice classifications
)
