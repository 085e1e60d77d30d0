package ports

// RequestSigner signs the unsigned XML representation of an outbound SAML
// message. This is a port interface; when no signer is configured the
// unsigned representation is transported directly.
type RequestSigner interface {
	// Sign adds an enveloped XML signature and returns the signed bytes.
	Sign(data []byte) ([]byte, error)
}
