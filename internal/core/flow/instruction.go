package flow

import "net/http"

// HTTPInstruction tells the RP-facing layer how to answer the current
// request. This core does not touch the transport itself.
type HTTPInstruction struct {
	Status      int
	Location    string
	Body        []byte
	ContentType string
}

// SeeOther builds a 303 redirect instruction.
func SeeOther(location string) *HTTPInstruction {
	return &HTTPInstruction{Status: http.StatusSeeOther, Location: location}
}

// HTMLPage builds a 200 instruction carrying an HTML body, used for
// auto-submitting POST-binding forms.
func HTMLPage(body []byte) *HTTPInstruction {
	return &HTTPInstruction{Status: http.StatusOK, Body: body, ContentType: "text/html"}
}
