// Package signing provides the enveloped-signature function applied to
// outbound authentication requests when a persona is configured to sign.
package signing

import (
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"

	"github.com/SvHu/svs/internal/core/ports"
)

// XMLDsigSigner signs SAML messages using goxmldsig. It creates enveloped
// signatures with the persona's key pair.
type XMLDsigSigner struct {
	privateKey  *rsa.PrivateKey
	certificate *x509.Certificate
}

// NewXMLDsigSigner creates a signer with the given key pair.
func NewXMLDsigSigner(privateKey *rsa.PrivateKey, certificate *x509.Certificate) *XMLDsigSigner {
	return &XMLDsigSigner{
		privateKey:  privateKey,
		certificate: certificate,
	}
}

// Sign adds an enveloped XML signature to the message and returns the signed
// bytes.
func (s *XMLDsigSigner) Sign(message []byte) ([]byte, error) {
	if len(message) == 0 {
		return nil, errors.New("empty message")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(message); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("empty XML document")
	}

	tlsCert := tls.Certificate{
		Certificate: [][]byte{s.certificate.Raw},
		PrivateKey:  s.privateKey,
	}
	keyStore := dsig.TLSCertKeyStore(tlsCert)

	signingContext := dsig.NewDefaultSigningContext(keyStore)
	signingContext.Canonicalizer = dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")

	signedRoot, err := signingContext.SignEnveloped(root)
	if err != nil {
		return nil, fmt.Errorf("sign XML: %w", err)
	}
	doc.SetRoot(signedRoot)

	signedBytes, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize signed XML: %w", err)
	}
	return signedBytes, nil
}

// Ensure the implementation satisfies the port.
var _ ports.RequestSigner = (*XMLDsigSigner)(nil)
