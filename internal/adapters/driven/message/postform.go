package message

import (
	"bytes"
	"html/template"
)

// postFormTemplate is the auto-submitting form of the HTTP-POST binding.
// JavaScript submits it immediately; the noscript button covers clients
// without scripting.
var postFormTemplate = template.Must(template.New("postform").Parse(`<!DOCTYPE html>
<html>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.Destination}}">
<input type="hidden" name="SAMLRequest" value="{{.SAMLRequest}}" />
{{if .RelayState}}<input type="hidden" name="RelayState" value="{{.RelayState}}" />{{end}}
<noscript><input type="submit" value="Continue" /></noscript>
</form>
</body>
</html>
`))

type postFormData struct {
	Destination string
	SAMLRequest string
	RelayState  string
}

func renderPostForm(destination, samlRequest, relayState string) ([]byte, error) {
	var buf bytes.Buffer
	err := postFormTemplate.Execute(&buf, postFormData{
		Destination: destination,
		SAMLRequest: samlRequest,
		RelayState:  relayState,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
