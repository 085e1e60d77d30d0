package message

import (
	"bytes"
	"compress/flate"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/beevik/etree"
	"github.com/crewjam/saml"

	"github.com/SvHu/svs/internal/core/domain"
	"github.com/SvHu/svs/internal/core/ports"
)

// MetadataSource supplies full entity descriptors for response validation.
// The MDQ client implements it.
type MetadataSource interface {
	EntityDescriptor(ctx context.Context, entityID string) (*saml.EntityDescriptor, error)
}

// Codec builds, signs and encodes outbound AuthnRequests and parses and
// validates inbound responses with crewjam/saml. One codec exists per
// persona; it is immutable after construction and safe for concurrent use.
type Codec struct {
	persona  *domain.Persona
	key      *rsa.PrivateKey
	cert     *x509.Certificate
	signer   ports.RequestSigner
	metadata MetadataSource
	requests ports.RequestStore
}

// Config collects the collaborators of a Codec. Key and Certificate are
// optional (needed only for encrypted assertions); Signer is optional (the
// unsigned representation is transported when absent).
type Config struct {
	Persona     *domain.Persona
	Key         *rsa.PrivateKey
	Certificate *x509.Certificate
	Signer      ports.RequestSigner
	Metadata    MetadataSource
	Requests    ports.RequestStore
}

// NewCodec creates a message codec for one persona.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Persona == nil {
		return nil, errors.New("message: persona is required")
	}
	if cfg.Metadata == nil || cfg.Requests == nil {
		return nil, errors.New("message: metadata source and request store are required")
	}
	return &Codec{
		persona:  cfg.Persona,
		key:      cfg.Key,
		cert:     cfg.Certificate,
		signer:   cfg.Signer,
		metadata: cfg.Metadata,
		requests: cfg.Requests,
	}, nil
}

// BuildAndEncode implements ports.MessageCodec.
func (c *Codec) BuildAndEncode(desc *domain.AuthnRequestDescriptor, binding, relayState string) (*ports.EncodedMessage, error) {
	data, err := c.serialize(desc)
	if err != nil {
		return nil, err
	}
	if c.signer != nil {
		data, err = c.signer.Sign(data)
		if err != nil {
			return nil, fmt.Errorf("sign authn request: %w", err)
		}
	}

	switch binding {
	case domain.BindingHTTPRedirect:
		return encodeRedirect(desc.Destination, data, relayState)
	case domain.BindingHTTPPost:
		return encodePost(desc.Destination, data, relayState)
	default:
		return nil, fmt.Errorf("no transport encoding for binding %q", binding)
	}
}

// serialize renders the descriptor as an unsigned AuthnRequest document.
func (c *Codec) serialize(desc *domain.AuthnRequestDescriptor) ([]byte, error) {
	format := desc.NameIDPolicy.Format
	allowCreate := desc.NameIDPolicy.AllowCreate
	forceAuthn := desc.ForceAuthn

	req := saml.AuthnRequest{
		ID:           desc.ID,
		Version:      desc.Version,
		IssueInstant: desc.IssueInstant,
		Destination:  desc.Destination,
		Issuer: &saml.Issuer{
			Format: domain.NameIDFormatEntity,
			Value:  desc.Issuer,
		},
		NameIDPolicy: &saml.NameIDPolicy{
			Format:      &format,
			AllowCreate: &allowCreate,
		},
		ForceAuthn: &forceAuthn,
	}
	if desc.ACSURL != "" {
		req.AssertionConsumerServiceURL = desc.ACSURL
		req.ProtocolBinding = desc.ResponseBinding
	}

	doc := etree.NewDocument()
	doc.SetRoot(req.Element())
	return doc.WriteToBytes()
}

// encodeRedirect applies the HTTP-Redirect binding: DEFLATE, base64, query
// parameters on the destination URL.
func encodeRedirect(destination string, data []byte, relayState string) (*ports.EncodedMessage, error) {
	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	dest, err := url.Parse(destination)
	if err != nil {
		return nil, fmt.Errorf("parse destination %q: %w", destination, err)
	}
	q := dest.Query()
	q.Set("SAMLRequest", base64.StdEncoding.EncodeToString(compressed.Bytes()))
	if relayState != "" {
		q.Set("RelayState", relayState)
	}
	dest.RawQuery = q.Encode()

	return &ports.EncodedMessage{Location: dest.String()}, nil
}

// encodePost applies the HTTP-POST binding: base64 in an auto-submitting
// HTML form.
func encodePost(destination string, data []byte, relayState string) (*ports.EncodedMessage, error) {
	body, err := renderPostForm(destination, base64.StdEncoding.EncodeToString(data), relayState)
	if err != nil {
		return nil, err
	}
	return &ports.EncodedMessage{Body: body, ContentType: "text/html"}, nil
}

// ParseAndValidate implements ports.MessageCodec. The asserting IdP is read
// from the response's Issuer element before validation so the right
// federation metadata can be fetched for signature checking.
func (c *Codec) ParseAndValidate(ctx context.Context, rawResponse, binding string) (*domain.FederationIdentity, error) {
	data, err := decodeRaw(rawResponse, binding)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	issuer, err := responseIssuer(data)
	if err != nil {
		return nil, err
	}

	ed, err := c.metadata.EntityDescriptor(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("metadata for response issuer %q: %w", issuer, err)
	}

	sp := c.buildServiceProvider(ed)
	assertion, err := sp.ParseXMLResponse(data, c.requests.GetAll())
	if err != nil {
		return nil, err
	}
	c.consumeRequestID(assertion)

	return assertionToIdentity(assertion, ed.EntityID), nil
}

func (c *Codec) buildServiceProvider(ed *saml.EntityDescriptor) *saml.ServiceProvider {
	acs := c.persona.ResponseEndpoint()
	acsURL, err := url.Parse(acs.URL)
	if err != nil {
		acsURL = &url.URL{}
	}
	metadataURL := url.URL{Scheme: acsURL.Scheme, Host: acsURL.Host, Path: "/saml/metadata"}

	return &saml.ServiceProvider{
		EntityID:          c.persona.EntityID,
		Key:               c.key,
		Certificate:       c.cert,
		MetadataURL:       metadataURL,
		AcsURL:            *acsURL,
		IDPMetadata:       ed,
		AllowIDPInitiated: c.persona.AllowUnsolicited,
	}
}

// consumeRequestID marks the answered request id as used, single-use.
func (c *Codec) consumeRequestID(assertion *saml.Assertion) {
	if assertion.Subject == nil {
		return
	}
	for _, sc := range assertion.Subject.SubjectConfirmations {
		if sc.SubjectConfirmationData != nil && sc.SubjectConfirmationData.InResponseTo != "" {
			c.requests.Valid(sc.SubjectConfirmationData.InResponseTo)
		}
	}
}

// maxInflatedResponse caps how far a deflated redirect payload may expand;
// a tiny base64 body must not decompress into an arbitrarily large buffer.
const maxInflatedResponse = 5 * 1024 * 1024

// decodeRaw undoes the transport encoding of the given binding.
func decodeRaw(raw, binding string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	if binding != domain.BindingHTTPRedirect {
		return decoded, nil
	}
	inflated, err := io.ReadAll(io.LimitReader(flate.NewReader(bytes.NewReader(decoded)), maxInflatedResponse+1))
	if err != nil {
		return nil, err
	}
	if len(inflated) > maxInflatedResponse {
		return nil, fmt.Errorf("inflated response exceeds %d bytes", maxInflatedResponse)
	}
	return inflated, nil
}

// responseIssuer reads the Issuer of the outermost response element.
func responseIssuer(data []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("parse response XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return "", errors.New("empty response document")
	}
	for _, child := range root.ChildElements() {
		if child.Tag == "Issuer" {
			return child.Text(), nil
		}
	}
	return "", errors.New("response carries no issuer")
}

// assertionToIdentity converts a validated assertion to the domain identity.
// Attribute keys prefer the friendly name when the IdP supplies one; values
// keep their asserted order.
func assertionToIdentity(assertion *saml.Assertion, idpEntityID string) *domain.FederationIdentity {
	identity := &domain.FederationIdentity{
		Attributes:  make(map[string][]string),
		IdPEntityID: idpEntityID,
	}
	if assertion.Issuer.Value != "" {
		identity.IdPEntityID = assertion.Issuer.Value
	}
	if assertion.Subject != nil && assertion.Subject.NameID != nil {
		identity.NameID = domain.NameID{
			Value:  assertion.Subject.NameID.Value,
			Format: assertion.Subject.NameID.Format,
		}
	}
	if len(assertion.AuthnStatements) > 0 {
		identity.AuthnInstant = assertion.AuthnStatements[0].AuthnInstant
	}
	for _, stmt := range assertion.AttributeStatements {
		for _, attr := range stmt.Attributes {
			key := attr.FriendlyName
			if key == "" {
				key = attr.Name
			}
			for _, value := range attr.Values {
				identity.Attributes[key] = append(identity.Attributes[key], value.Value)
			}
		}
	}
	return identity
}

// Ensure Codec implements the message port.
var _ ports.MessageCodec = (*Codec)(nil)
