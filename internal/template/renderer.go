// Package template renders vendor notification messages with the Liquid
// template language. Rendering never fails: unresolved placeholders become a
// configured fallback string and malformed template syntax is passed through
// as literal text.
package template

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/lead-relay/internal/domain"
)

// DefaultFallback is the value substituted for placeholders with no data.
const DefaultFallback = "não informado"

// DefaultMessage is the stock WhatsApp notification template.
const DefaultMessage = `🔔 *NOVO ATENDIMENTO PENDENTE*

👤 *Cliente:* {{cliente_nome}}
📱 *WhatsApp:* {{cliente_numero}}
🛍️ *Produto:* {{produto}}
🏢 *CNPJ:* {{cnpj}}

⚡ *Ação necessária:* Entre em contato com o cliente para dar continuidade ao atendimento.

_Mensagem automática do sistema Kommo_`

// varPattern finds {{ variable }} references. The second group captures the
// delimiter so plain references can be told apart from filtered ones.
var varPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*?)\s*(\||\}\})`)

// Renderer renders Liquid templates with a fallback for missing fields.
// It is safe for concurrent use; parsed templates are cached by content.
type Renderer struct {
	engine   *liquid.Engine
	fallback string
	cache    sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a renderer. An empty fallback selects DefaultFallback.
func NewRenderer(fallback string) *Renderer {
	if fallback == "" {
		fallback = DefaultFallback
	}
	engine := liquid.NewEngine()

	// {{ x | default: "y" }} support, mirroring what template authors
	// expect from hosted Liquid.
	engine.RegisterFilter("default", func(value interface{}, defaultVal string) interface{} {
		if value == nil {
			return defaultVal
		}
		strVal := fmt.Sprintf("%v", value)
		if strVal == "" || strVal == "<nil>" {
			return defaultVal
		}
		return value
	})

	return &Renderer{engine: engine, fallback: fallback}
}

// Parse reports whether the template compiles. Handlers use this to warn on
// save; a template that fails to parse still renders as literal text.
func (r *Renderer) Parse(templateStr string) error {
	_, err := r.engine.ParseString(templateStr)
	return err
}

// Render substitutes fields into the template. Pure and deterministic: the
// same template and fields always produce the same output. Field values are
// inserted as literal text, never re-evaluated as template markup. Never
// returns an error; malformed templates render as-is.
func (r *Renderer) Render(templateStr string, fields map[string]string) string {
	ctx := make(map[string]interface{}, len(fields))

	// Every plain {{ var }} reference gets a binding so nothing renders as
	// raw markup or an empty hole. Filtered references are left to their
	// filter chain (an author's `| default:` beats our fallback).
	for _, match := range varPattern.FindAllStringSubmatch(templateStr, -1) {
		if len(match) < 3 || match[2] != "}}" {
			continue
		}
		ctx[strings.TrimSpace(match[1])] = r.fallback
	}
	for k, v := range fields {
		if v == "" {
			ctx[k] = r.fallback
			continue
		}
		ctx[k] = v
	}

	tpl, err := r.parse(templateStr)
	if err != nil {
		// Unterminated delimiters and other syntax errors are treated as
		// literal text, not failures.
		return templateStr
	}

	out, err := tpl.RenderString(ctx)
	if err != nil {
		return templateStr
	}
	return out
}

func (r *Renderer) parse(templateStr string) (*liquid.Template, error) {
	if cached, ok := r.cache.Load(templateStr); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := r.engine.ParseString(templateStr)
	if err != nil {
		return nil, err
	}
	r.cache.Store(templateStr, tpl)
	return tpl, nil
}

// LeadFields maps a lead event onto the template variables used by the
// notification message. Field names match the CRM webhook payload.
func LeadFields(l domain.LeadEvent) map[string]string {
	return map[string]string{
		"cliente_nome":   l.ClientName,
		"cliente_numero": l.ClientContact,
		"produto":        l.Product,
		"cnpj":           l.TaxID,
	}
}
