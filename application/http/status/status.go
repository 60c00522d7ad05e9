// Package status holds the table of HTTP status codes and the reason
// phrases written on the status line.
package status

// ReasonUnknown is rendered for codes missing from the table.
const ReasonUnknown = "unknown"

type Status struct {
	Code         uint
	ReasonPhrase string
}

// Informational 1XX
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.2
var (
	Continue           = add(Status{100, "Continue"})
	SwitchingProtocols = add(Status{101, "SwitchingProtocols"})
	Processing         = add(Status{102, "Processing"})
)

// Successful 2XX
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.3
var (
	OK                   = add(Status{200, "OK"})
	Created              = add(Status{201, "Created"})
	Accepted             = add(Status{202, "Accepted"})
	NonAuthoritativeInfo = add(Status{203, "Non-AuthoritativeInformation"})
	NoContent            = add(Status{204, "NoContent"})
	ResetContent         = add(Status{205, "ResetContent"})
	PartialContent       = add(Status{206, "PartialContent"})
	MultiStatus          = add(Status{207, "Multi-Status"})
	AlreadyReported      = add(Status{208, "AlreadyReported"})
	IMUsed               = add(Status{226, "IMUsed"})
)

// Redirection 3xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.4
var (
	MultipleChoices   = add(Status{300, "MultipleChoices"})
	MovedPermanently  = add(Status{301, "MovedPermanently"})
	Found             = add(Status{302, "Found"})
	SeeOther          = add(Status{303, "SeeOther"})
	NotModified       = add(Status{304, "NotModified"})
	UseProxy          = add(Status{305, "UseProxy"})
	TemporaryRedirect = add(Status{307, "TemporaryRedirect"})
	PermanentRedirect = add(Status{308, "PermanentRedirect"})
)

// Client Error 4xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.5
var (
	BadRequest                  = add(Status{400, "BadRequest"})
	Unauthorized                = add(Status{401, "Unauthorized"})
	PaymentRequired             = add(Status{402, "PaymentRequired"})
	Forbidden                   = add(Status{403, "Forbidden"})
	NotFound                    = add(Status{404, "NotFound"})
	MethodNotAllowed            = add(Status{405, "MethodNotAllowed"})
	NotAcceptable               = add(Status{406, "NotAcceptable"})
	ProxyAuthRequired           = add(Status{407, "ProxyAuthenticationRequired"})
	RequestTimeout              = add(Status{408, "RequestTimeout"})
	Conflict                    = add(Status{409, "Conflict"})
	Gone                        = add(Status{410, "Gone"})
	LengthRequired              = add(Status{411, "LengthRequired"})
	PreconditionFailed          = add(Status{412, "PreconditionFailed"})
	PayloadTooLarge             = add(Status{413, "PayloadTooLarge"})
	URITooLong                  = add(Status{414, "URITooLong"})
	UnsupportedMediaType        = add(Status{415, "UnsupportedMediaType"})
	RangeNotSatisfiable         = add(Status{416, "RangeNotSatisfiable"})
	ExpectationFailed           = add(Status{417, "ExpectationFailed"})
	MisdirectedRequest          = add(Status{421, "MisdirectedRequest"})
	UnprocessableEntity         = add(Status{422, "UnprocessableEntity"})
	Locked                      = add(Status{423, "Locked"})
	FailedDependency            = add(Status{424, "FailedDependency"})
	UpgradeRequired             = add(Status{426, "UpgradeRequired"})
	PreconditionRequired        = add(Status{428, "PreconditionRequired"})
	TooManyRequests             = add(Status{429, "TooManyRequests"})
	RequestHeaderFieldsTooLarge = add(Status{431, "RequestHeaderFieldsTooLarge"})
	UnavailableForLegalReasons  = add(Status{451, "UnavailableForLegalReasons"})
)

// Server Error 5xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.6
var (
	InternalServerError           = add(Status{500, "InternalServerError"})
	NotImplemented                = add(Status{501, "NotImplemented"})
	BadGateway                    = add(Status{502, "BadGateway"})
	ServiceUnavailable            = add(Status{503, "ServiceUnavailable"})
	GatewayTimeout                = add(Status{504, "GatewayTimeout"})
	HTTPVersionNotSupported       = add(Status{505, "HTTPVersionNotSupported"})
	VariantAlsoNegotiates         = add(Status{506, "VariantAlsoNegotiates"})
	InsufficientStorage           = add(Status{507, "InsufficientStorage"})
	LoopDetected                  = add(Status{508, "LoopDetected"})
	NotExtended                   = add(Status{510, "NotExtended"})
	NetworkAuthenticationRequired = add(Status{511, "NetworkAuthenticationRequired"})
)

var (
	sm    = make(map[uint]*Status)
	codes = make([]uint, 0)
)

func add(status Status) Status {
	sm[status.Code] = &status
	codes = append(codes, status.Code)
	return status
}

func FromCode(code uint) (status Status, ok bool) {
	s, ok := sm[code]
	if !ok {
		return Status{Code: code, ReasonPhrase: ReasonUnknown}, false
	}

	return *s, true
}

// Reason returns the reason phrase of code, or [ReasonUnknown].
func Reason(code uint) string {
	s, _ := FromCode(code)
	return s.ReasonPhrase
}

// Codes lists every registered code in ascending order.
func Codes() []uint {
	clone := make([]uint, len(codes))
	copy(clone, codes)
	return clone
}
