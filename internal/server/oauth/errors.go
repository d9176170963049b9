package oauth

import "errors"

// Ошибки провайдеров. Сырые HTTP/JSON ошибки всегда оборачиваются в одну из них.
var (
	// ErrUnsupportedProvider is returned for provider names that are not registered.
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")

	// ErrUpstreamUnavailable covers network failures, timeouts, 5xx and 429 answers.
	ErrUpstreamUnavailable = errors.New("oauth provider unavailable")

	// ErrUpstreamRejected covers 4xx answers and OAuth error responses,
	// e.g. an expired or already used authorization code.
	ErrUpstreamRejected = errors.New("oauth provider rejected the request")

	// ErrUpstreamProfileInvalid covers malformed, oversized or incomplete
	// user-info responses.
	ErrUpstreamProfileInvalid = errors.New("oauth provider returned an invalid profile")
)
