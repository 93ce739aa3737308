package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/dna-dev/dna/internal/config"
	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/dnatest"
	"github.com/dna-dev/dna/pkg/server"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderElement(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		attrs []string
		want  []string
	}{
		{"counter defaults", "x-counter", nil, []string{`<span class="label">Count</span>`, `<output>0</output>`}},
		{"counter attributes", "x-counter", []string{"count=5", "label=Total"}, []string{`count="5"`, `<output>5</output>`, `>Total<`}},
		{"todo", "x-todo", []string{"title=Groceries"}, []string{`<h2>Groceries</h2>`, `<ul></ul>`}},
		{"badge", "x-badge", []string{"text=<new>", "tone=warn"}, []string{`<span class="badge badge-warn">&lt;new&gt;</span>`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := renderElement(config.New(), tt.tag, tt.attrs, false, quietLogger())
			if err != nil {
				t.Fatalf("renderElement() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(html, want) {
					t.Errorf("HTML = %s, want it to contain %s", html, want)
				}
			}
		})
	}
}

func TestRenderElementErrors(t *testing.T) {
	cfg := config.New()
	if _, err := renderElement(cfg, "x-missing", nil, false, quietLogger()); !errors.IsCode(err, errors.CodeUnknownElement) {
		t.Errorf("unknown tag error = %v, want E031", err)
	}
	if _, err := renderElement(cfg, "x-counter", []string{"count=abc"}, false, quietLogger()); !errors.IsCode(err, errors.CodeAttributeCast) {
		t.Errorf("bad attribute error = %v, want E010", err)
	}
	if _, err := renderElement(cfg, "x-counter", []string{"count"}, false, quietLogger()); err == nil {
		t.Error("malformed argument accepted")
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", "x-counter", "count=2", "--hids")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, `data-hid="h1"`) || !strings.Contains(out, "<output") {
		t.Errorf("render output = %s", out)
	}
}

func TestElementsCommand(t *testing.T) {
	out, err := execute(t, "elements")
	if err != nil {
		t.Fatalf("elements error = %v", err)
	}
	for _, tag := range []string{"x-badge", "x-counter", "x-todo"} {
		if !strings.Contains(out, tag) {
			t.Errorf("elements output lacks %s:\n%s", tag, out)
		}
	}

	out, err = execute(t, "elements", "--json", "--builtins")
	if err != nil {
		t.Fatalf("elements --json error = %v", err)
	}
	var resp server.ElementsResponse
	if err := jsoniter.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, out)
	}
	if len(resp.Elements) != 3 || len(resp.Builtins) == 0 {
		t.Fatalf("elements = %d, builtins = %d", len(resp.Elements), len(resp.Builtins))
	}
	if badge := resp.Elements[0]; badge.Tag != "x-badge" || badge.Extends != "span" || badge.Interface != "HTMLSpanElement" {
		t.Errorf("badge = %+v", badge)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil || strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, %v", out, err)
	}
}

func TestTodoListeners(t *testing.T) {
	h := dnatest.Mount(t, todoElement())

	if err := h.Fire("input", "input.draft", map[string]any{"value": "milk"}); err != nil {
		t.Fatalf("input event error = %v", err)
	}
	before := h.Element.Stats().Cycles
	if err := h.Fire("submit", "form", nil); err != nil {
		t.Fatalf("submit event error = %v", err)
	}
	if cycles := h.Element.Stats().Cycles - before; cycles != 1 {
		t.Errorf("submit rendered %d times, want 1", cycles)
	}

	items, _ := h.Element.Get("items")
	if list, _ := items.([]string); len(list) != 1 || list[0] != "milk" {
		t.Fatalf("items = %v, want [milk]", items)
	}
	if draft, _ := h.Element.Get("draft"); draft != "" {
		t.Errorf("draft = %q after submit", draft)
	}
	if evt := h.ExpectEmitted("added"); evt != nil && evt.Detail != "milk" {
		t.Errorf("added detail = %v", evt.Detail)
	}
	h.ExpectContains("<li><span>milk</span>")

	if err := h.Fire("click", "li button.remove", nil); err != nil {
		t.Fatalf("remove event error = %v", err)
	}
	h.ExpectNotContains("<li>")
}

func TestCounterStepAndReflection(t *testing.T) {
	h := dnatest.Mount(t, counterElement(), component.WithProps(map[string]any{"step": 5}))

	if err := h.Fire("click", "button.inc", nil); err != nil {
		t.Fatalf("click error = %v", err)
	}
	if v, _ := h.Element.Get("count"); v != 5 {
		t.Errorf("count = %v, want 5", v)
	}
	h.ExpectAttribute("count", "5")
	h.ExpectContains("<output>5</output>")
	if evt := h.ExpectEmitted("change"); evt != nil && evt.Detail != 5 {
		t.Errorf("change detail = %v, want 5", evt.Detail)
	}

	if err := h.Fire("click", "button.dec", nil); err != nil {
		t.Fatalf("click error = %v", err)
	}
	h.ExpectAttribute("count", "0")
}

func TestDetailValue(t *testing.T) {
	tests := []struct {
		detail any
		want   string
	}{
		{"a", "a"},
		{map[string]any{"value": "b"}, "b"},
		{map[string]any{"value": 1}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := detailValue(tt.detail); got != tt.want {
			t.Errorf("detailValue(%v) = %q, want %q", tt.detail, got, tt.want)
		}
	}
}
