package domain

import "fmt"

// ErrorCode represents categorized error types.
// These codes are stable and can be used for programmatic error handling.
type ErrorCode string

const (
	ErrCodeConfigMissing        ErrorCode = "config_missing"
	ErrCodeUnknownIdP           ErrorCode = "unknown_idp"
	ErrCodeUnsupportedBinding   ErrorCode = "unsupported_binding"
	ErrCodeBindingEncoding      ErrorCode = "binding_encoding"
	ErrCodeMetadataUnavailable  ErrorCode = "metadata_unavailable"
	ErrCodeAuthnFailure         ErrorCode = "authn_failure"
	ErrCodeResponseParse        ErrorCode = "response_parse"
	ErrCodeNonFederationMember  ErrorCode = "non_federation_member"
	ErrCodeIdentityUnresolvable ErrorCode = "identity_unresolvable"
	ErrCodeAffiliationDenied    ErrorCode = "affiliation_denied"
	ErrCodeServiceError         ErrorCode = "service_error"
)

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Negative reports whether this code describes a terminal negative result
// ("authentication completed but policy not satisfied") rather than a
// transaction abort. The RP-facing layer must keep the two apart.
func (c ErrorCode) Negative() bool {
	switch c {
	case ErrCodeAuthnFailure, ErrCodeIdentityUnresolvable, ErrCodeAffiliationDenied:
		return true
	}
	return false
}

// Title returns a user-friendly title for this error code.
func (c ErrorCode) Title() string {
	switch c {
	case ErrCodeConfigMissing:
		return "Configuration Error"
	case ErrCodeUnknownIdP:
		return "Unknown Identity Provider"
	case ErrCodeUnsupportedBinding:
		return "Unsupported Binding"
	case ErrCodeBindingEncoding:
		return "Message Encoding Error"
	case ErrCodeMetadataUnavailable:
		return "Metadata Unavailable"
	case ErrCodeAuthnFailure:
		return "Authentication Failed"
	case ErrCodeResponseParse:
		return "Validation Failed"
	case ErrCodeNonFederationMember:
		return "Identity Provider Not In Federation"
	case ErrCodeIdentityUnresolvable:
		return "Identity Could Not Be Established"
	case ErrCodeAffiliationDenied:
		return "Affiliation Not Satisfied"
	default:
		return "Error"
	}
}

// AppError is a structured error with code, message, and optional cause.
// IdPEntityID is set on errors raised after an IdP has asserted an identity
// so the RP-facing layer can include it in audit records.
type AppError struct {
	Code        ErrorCode
	Message     string
	Cause       error
	IdPEntityID string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Negative reports whether the error is a terminal negative result rather
// than an abort.
func (e *AppError) Negative() bool {
	return e.Code.Negative()
}

// ConfigError creates a configuration error.
func ConfigError(message string) *AppError {
	return &AppError{Code: ErrCodeConfigMissing, Message: message}
}

// UnknownIdPError creates an error for an IdP with no metadata.
func UnknownIdPError(entityID string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownIdP,
		Message: fmt.Sprintf("identity provider %q is not known to the metadata service", entityID),
	}
}

// UnsupportedBindingError creates an error for an IdP offering no usable binding.
func UnsupportedBindingError(entityID string) *AppError {
	return &AppError{
		Code:    ErrCodeUnsupportedBinding,
		Message: fmt.Sprintf("identity provider %q supports neither HTTP-POST nor HTTP-Redirect", entityID),
	}
}

// BindingEncodingError creates an error for a failed transport encoding.
func BindingEncodingError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeBindingEncoding, Message: message, Cause: cause}
}

// MetadataUnavailableError creates an error for an unreachable metadata
// source. Retryable by the user, not a crash.
func MetadataUnavailableError(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeMetadataUnavailable,
		Message: "the metadata service could not be reached",
		Cause:   cause,
	}
}

// AuthnFailureError creates the expected error for an IdP-side authentication
// failure. It is user-facing and not a system error.
func AuthnFailureError() *AppError {
	return &AppError{Code: ErrCodeAuthnFailure, Message: "user not authenticated at the identity provider"}
}

// ResponseParseError creates an error for a malformed or invalidly signed
// authentication response. The cause keeps the library detail for operators;
// the message stays generic toward the user.
func ResponseParseError(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeResponseParse,
		Message: "the authentication response could not be validated",
		Cause:   cause,
	}
}

// NonFederationMemberError creates an error for an IdP outside the federation.
func NonFederationMemberError(entityID string) *AppError {
	return &AppError{
		Code:        ErrCodeNonFederationMember,
		Message:     fmt.Sprintf("identity provider %q is not a federation member", entityID),
		IdPEntityID: entityID,
	}
}

// IdentityUnresolvableError creates the negative result for a transaction
// where no usable durable identifier could be derived.
func IdentityUnresolvableError(idpEntityID string) *AppError {
	return &AppError{
		Code:        ErrCodeIdentityUnresolvable,
		Message:     "the user's identity could not be provided",
		IdPEntityID: idpEntityID,
	}
}

// AffiliationDeniedError creates the negative result for a user who does not
// carry the requested affiliation.
func AffiliationDeniedError(idpEntityID string) *AppError {
	return &AppError{
		Code:        ErrCodeAffiliationDenied,
		Message:     "the user does not have the correct affiliation",
		IdPEntityID: idpEntityID,
	}
}

// ServiceError creates a generic service error.
func ServiceError(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeServiceError, Message: message, Cause: cause}
}
