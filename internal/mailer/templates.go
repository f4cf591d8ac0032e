package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var layout = template.Must(template.New("email").Parse(
	`<div style="font-family:sans-serif"><h2>{{.Title}}</h2>{{range .Lines}}<p>{{.}}</p>{{end}}</div>`))

// Compose renders a simple titled message with one paragraph per line
func Compose(to, subject string, lines ...string) Message {
	var buf bytes.Buffer
	data := struct {
		Title string
		Lines []string
	}{subject, lines}
	if err := layout.Execute(&buf, data); err != nil {
		// Unreachable with string data, keep the text anyway
		buf.Reset()
		buf.WriteString(template.HTMLEscapeString(fmt.Sprint(lines)))
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}
}
