package template

import (
	"strings"
	"testing"

	"github.com/ignite/lead-relay/internal/domain"
)

func TestRender_Substitution(t *testing.T) {
	r := NewRenderer("")

	out := r.Render("Cliente: {{cliente_nome}} / Produto: {{produto}}", map[string]string{
		"cliente_nome": "João Silva",
		"produto":      "Sistema ERP",
	})

	want := "Cliente: João Silva / Produto: Sistema ERP"
	if out != want {
		t.Errorf("Render() = %q, want %q", out, want)
	}
}

func TestRender_FallbackValue(t *testing.T) {
	r := NewRenderer("")

	tests := []struct {
		name     string
		template string
		fields   map[string]string
	}{
		{"unknown placeholder", "CNPJ: {{cnpj}}", map[string]string{}},
		{"empty field value", "CNPJ: {{cnpj}}", map[string]string{"cnpj": ""}},
		{"several unknowns", "{{a}} {{b}} {{c}}", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Render(tt.template, tt.fields)
			if strings.Contains(out, "{{") || strings.Contains(out, "}}") {
				t.Errorf("Render() left raw placeholder markup: %q", out)
			}
			if !strings.Contains(out, DefaultFallback) {
				t.Errorf("Render() = %q, want fallback %q present", out, DefaultFallback)
			}
		})
	}
}

func TestRender_CustomFallback(t *testing.T) {
	r := NewRenderer("n/a")
	out := r.Render("{{missing}}", nil)
	if out != "n/a" {
		t.Errorf("Render() = %q, want %q", out, "n/a")
	}
}

func TestRender_MalformedTemplateIsLiteral(t *testing.T) {
	r := NewRenderer("")

	tests := []struct {
		name     string
		template string
	}{
		{"unterminated tag", "Cliente: {% if x"},
		{"unclosed if", "{% if cliente %}oi"},
		{"stray endfor", "{% endfor %}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.Render(tt.template, map[string]string{"cliente": "x"})
			if out != tt.template {
				t.Errorf("Render() = %q, want literal %q", out, tt.template)
			}
		})
	}
}

func TestRender_FieldValuesAreLiteral(t *testing.T) {
	r := NewRenderer("")

	// A field value containing template markup must not be re-evaluated.
	out := r.Render("Nome: {{nome}}", map[string]string{"nome": "{{produto}}"})
	if out != "Nome: {{produto}}" {
		t.Errorf("Render() = %q, nested evaluation must not happen", out)
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer("")
	fields := map[string]string{"cliente_nome": "Maria Santos"}

	first := r.Render(DefaultMessage, fields)
	for i := 0; i < 5; i++ {
		if got := r.Render(DefaultMessage, fields); got != first {
			t.Fatalf("Render() not deterministic on iteration %d", i)
		}
	}
}

func TestRender_DefaultFilter(t *testing.T) {
	r := NewRenderer("")
	out := r.Render(`{{ nome | default: "Amigo" }}`, nil)
	// The explicit filter default wins over the renderer fallback.
	if out != "Amigo" {
		t.Errorf("Render() = %q, want %q", out, "Amigo")
	}
}

func TestLeadFields(t *testing.T) {
	l := domain.LeadEvent{
		ClientName:    "João Silva",
		ClientContact: "+5511987654321",
		Product:       "Sistema ERP",
		TaxID:         "12.345.678/0001-90",
	}

	fields := LeadFields(l)
	if fields["cliente_nome"] != "João Silva" {
		t.Errorf("cliente_nome = %q", fields["cliente_nome"])
	}
	if fields["cliente_numero"] != "+5511987654321" {
		t.Errorf("cliente_numero = %q", fields["cliente_numero"])
	}
	if fields["produto"] != "Sistema ERP" {
		t.Errorf("produto = %q", fields["produto"])
	}
	if fields["cnpj"] != "12.345.678/0001-90" {
		t.Errorf("cnpj = %q", fields["cnpj"])
	}
}

func TestStore(t *testing.T) {
	s := NewStore("")
	if s.Get() != DefaultMessage {
		t.Errorf("empty seed should select DefaultMessage")
	}

	s.Set("Olá {{cliente_nome}}")
	if s.Get() != "Olá {{cliente_nome}}" {
		t.Errorf("Set/Get roundtrip failed, got %q", s.Get())
	}
}
