package email

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/pkg/errors"
)

type Template string

const (
	TemplateItineraryReminder Template = "itinerary_reminder"
)

// TemplateDir is resolved against the working directory, like static/.
var TemplateDir = "templates/emails"

// Render executes the named HTML template with data.
func Render(name Template, data map[string]string) (string, error) {
	tmplPath := filepath.Join(TemplateDir, fmt.Sprintf("%s.html", name))

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse email template %s", name)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}

	return body.String(), nil
}
