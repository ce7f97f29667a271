package ir

// Placeholder values used when a provider's wire format requires a field
// that has no meaningful source value during a transform (e.g. transforming
// a bare request with no id, or filling a provider's required-but-unused
// slot).
const (
	PlaceholderModel         = "transformed"
	PlaceholderID            = "transformed"
	PlaceholderToolArguments = "{}"
	DefaultImageMIME         = "image/jpeg"
	RefusalText              = "I'm unable to produce a response for this request."
)
