// Package formatter renders message templates against a contact, the way
// the worker does before sending.
package formatter

import (
	"regexp"
	"strings"

	"github.com/cristianoliveira/sendpanel/internal/domain"
)

// TemplateEngine provides template parsing and variable substitution.
type TemplateEngine interface {
	// Parse returns the placeholders found in the template.
	Parse(template string) []string

	// Render substitutes the contact's fields into the template.
	Render(template string, c domain.Contact) string
}

// templateEngine implements TemplateEngine interface.
type templateEngine struct {
	variablePattern *regexp.Regexp
}

// NewTemplateEngine creates a new template engine instance.
func NewTemplateEngine() TemplateEngine {
	return &templateEngine{
		variablePattern: regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`),
	}
}

// Parse identifies all placeholders in a template using {name} syntax.
// Returns the names found, in order, without duplicates.
func (te *templateEngine) Parse(template string) []string {
	matches := te.variablePattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool)
	variables := []string{}
	for _, match := range matches {
		name := match[1]
		if !seen[name] {
			variables = append(variables, name)
			seen[name] = true
		}
	}
	return variables
}

// Render replaces {nombre}/{name} and {telefono}/{phone} with the contact's
// values. If the template uses any other placeholder it is returned
// unchanged, as the worker sends it.
func (te *templateEngine) Render(template string, c domain.Contact) string {
	values := make(map[string]string)
	for _, name := range te.Parse(template) {
		v, ok := resolve(name, c)
		if !ok {
			return template
		}
		values[name] = v
	}

	result := template
	for name, v := range values {
		result = strings.ReplaceAll(result, "{"+name+"}", v)
	}
	return result
}

func resolve(name string, c domain.Contact) (string, bool) {
	switch name {
	case "nombre", "name":
		return c.Name, true
	case "telefono", "phone":
		return c.Phone, true
	default:
		return "", false
	}
}

// Preview renders the template for the first contact of file. ok is false
// when there is nothing to preview.
func Preview(engine TemplateEngine, template string, file domain.ContactFile) (string, bool) {
	if template == "" || len(file.Preview) == 0 {
		return "", false
	}
	return engine.Render(template, file.Preview[0]), true
}
