// Package message renders the reminder SMS body from a Liquid template with
// per-recipient substitution.
package message

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/osteele/liquid"

	"github.com/graymont/rent-reminder/internal/recipients"
)

// Renderer renders Liquid templates with caching of parsed templates.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a renderer with the domain filters registered.
func NewRenderer() *Renderer {
	r := &Renderer{engine: liquid.NewEngine()}
	r.registerFilters()
	return r
}

func (r *Renderer) registerFilters() {
	// {{ name | default: "Tenant" }}
	r.engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		s := fmt.Sprintf("%v", value)
		if strings.TrimSpace(s) == "" {
			return defaultVal
		}
		return value
	})

	// {{ name | titlecase }}
	r.engine.RegisterFilter("titlecase", func(s string) string {
		words := strings.Fields(strings.ToLower(s))
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	})
}

// Render executes the template against the given bindings. Parsed templates
// are cached by source so a send run compiles the template once.
func (r *Renderer) Render(template string, bindings map[string]interface{}) (string, error) {
	var tpl *liquid.Template
	if cached, ok := r.cache.Load(template); ok {
		tpl = cached.(*liquid.Template)
	} else {
		parsed, err := r.engine.ParseString(template)
		if err != nil {
			return "", fmt.Errorf("parse template: %w", err)
		}
		r.cache.Store(template, parsed)
		tpl = parsed
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

// Bindings builds the substitution map for one recipient.
func Bindings(rec recipients.Record, dueDate time.Time) map[string]interface{} {
	return map[string]interface{}{
		"name":         rec.Name,
		"phone_number": rec.PhoneNumber,
		"due_date":     dueDate.Format("January 2"),
	}
}
