package dedupe

// Reasons an event does not become a marker. Used as metric label values.
const (
	ReasonMalformed   = "malformed"
	ReasonNotAllowed  = "not_allowed"
	ReasonWrongType   = "wrong_type"
	ReasonMultiTarget = "multi_target"
	ReasonShorterCast = "shorter_cast"
	ReasonEcho        = "echo"
	ReasonSplash      = "splash"
)
