package apierror

// Error type URIs following the urn:moodhabit:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates request validation failed (400)
	TypeValidation = "urn:moodhabit:error:validation"

	// TypeNotFound indicates the requested resource was not found (404)
	TypeNotFound = "urn:moodhabit:error:not_found"

	// TypeConflict indicates a resource conflict (409)
	TypeConflict = "urn:moodhabit:error:conflict"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:moodhabit:error:rate_limit"

	// TypeUnauthorized indicates missing or invalid authentication (401)
	TypeUnauthorized = "urn:moodhabit:error:unauthorized"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:moodhabit:error:internal"

	// TypeInvalidDate indicates a date that is not a valid YYYY-MM-DD value (400)
	TypeInvalidDate = "urn:moodhabit:error:invalid_date"

	// TypeRatingWindowClosed indicates feedback submitted for a recommendation
	// whose date falls outside the current Monday-to-Sunday week (400)
	TypeRatingWindowClosed = "urn:moodhabit:error:rating_window_closed"

	// TypeBadRequest indicates a malformed or invalid request (400)
	TypeBadRequest = "urn:moodhabit:error:bad_request"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation         = "Validation Error"
	TitleNotFound           = "Resource Not Found"
	TitleConflict           = "Resource Conflict"
	TitleRateLimit          = "Rate Limit Exceeded"
	TitleUnauthorized       = "Authentication Required"
	TitleInternal           = "Internal Server Error"
	TitleInvalidDate        = "Invalid Date"
	TitleRatingWindowClosed = "Rating Window Closed"
	TitleBadRequest         = "Bad Request"
)
