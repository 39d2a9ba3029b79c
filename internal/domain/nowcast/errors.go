package nowcast

import apperrors "github.com/yanqian/rain-nowcast/pkg/errors"

// Error codes shared by the fetcher, the normalizer and the transport.
const (
	CodeConnection    = "connection_error"
	CodeAuth          = "auth_error"
	CodeParse         = "parse_error"
	CodeInvalidInput  = "invalid_input"
	CodeInvalidAuth   = "invalid_auth"
	CodeCannotConnect = "cannot_connect"
	CodeStore         = "store_error"
)

// IsConnectionError reports network, timeout and non-2xx failures, auth included.
func IsConnectionError(err error) bool {
	return apperrors.IsCode(err, CodeConnection) || apperrors.IsCode(err, CodeAuth)
}

// IsAuthError reports a provider rejection of the API key.
func IsAuthError(err error) bool {
	return apperrors.IsCode(err, CodeAuth)
}

// IsParseError reports a response that could not be interpreted.
func IsParseError(err error) bool {
	return apperrors.IsCode(err, CodeParse)
}
