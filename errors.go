package svs

import (
	"github.com/SvHu/svs/internal/core/domain"
)

// Re-export error types from domain package for consumers of the root package
type ErrorCode = domain.ErrorCode
type AppError = domain.AppError

// Re-export error code constants
const (
	ErrCodeConfigMissing        = domain.ErrCodeConfigMissing
	ErrCodeUnknownIdP           = domain.ErrCodeUnknownIdP
	ErrCodeUnsupportedBinding   = domain.ErrCodeUnsupportedBinding
	ErrCodeBindingEncoding      = domain.ErrCodeBindingEncoding
	ErrCodeMetadataUnavailable  = domain.ErrCodeMetadataUnavailable
	ErrCodeAuthnFailure         = domain.ErrCodeAuthnFailure
	ErrCodeResponseParse        = domain.ErrCodeResponseParse
	ErrCodeNonFederationMember  = domain.ErrCodeNonFederationMember
	ErrCodeIdentityUnresolvable = domain.ErrCodeIdentityUnresolvable
	ErrCodeAffiliationDenied    = domain.ErrCodeAffiliationDenied
	ErrCodeServiceError         = domain.ErrCodeServiceError
)

// Re-export error constructors
var (
	ConfigError               = domain.ConfigError
	UnknownIdPError           = domain.UnknownIdPError
	UnsupportedBindingError   = domain.UnsupportedBindingError
	BindingEncodingError      = domain.BindingEncodingError
	MetadataUnavailableError  = domain.MetadataUnavailableError
	AuthnFailureError         = domain.AuthnFailureError
	ResponseParseError        = domain.ResponseParseError
	NonFederationMemberError  = domain.NonFederationMemberError
	IdentityUnresolvableError = domain.IdentityUnresolvableError
	AffiliationDeniedError    = domain.AffiliationDeniedError
	ServiceError              = domain.ServiceError
)
