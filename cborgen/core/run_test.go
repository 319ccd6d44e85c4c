package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureSrc = `package fixture

type Widget struct {
	Name  string
	Count int64
	Tags  map[string][]int
}
`

func TestRun_SpecializesScalarsAndFallsBackForUnknownShapes(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "widget.go")
	if err := os.WriteFile(in, []byte(fixtureSrc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out := filepath.Join(dir, "widget_cbor.go")

	if err := Run(in, out, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	body := string(src)

	if !strings.Contains(body, "cbor.AppendString(b, x.Name)") {
		t.Errorf("expected direct AppendString call for Name field, got:\n%s", body)
	}
	if !strings.Contains(body, "cbor.AppendInt64(b, x.Count)") {
		t.Errorf("expected direct AppendInt64 call for Count field, got:\n%s", body)
	}
	if !strings.Contains(body, "cbor.AppendValue(b, x.Tags)") {
		t.Errorf("expected map[string][]int field to fall back to AppendValue, got:\n%s", body)
	}
	if !strings.Contains(body, "func (x *Widget) MarshalCBOR") || !strings.Contains(body, "func (x *Widget) UnmarshalCBOR") {
		t.Errorf("expected both MarshalCBOR and UnmarshalCBOR to be generated")
	}
}

func TestRun_StructAllowlistRestrictsGeneration(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "widget.go")
	if err := os.WriteFile(in, []byte(fixtureSrc+"\ntype Other struct { X int }\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out := filepath.Join(dir, "widget_cbor.go")

	if err := Run(in, out, Options{Structs: []string{"Other"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	body := string(src)
	if strings.Contains(body, "Widget") {
		t.Errorf("allowlist should have excluded Widget, got:\n%s", body)
	}
	if !strings.Contains(body, "func (x *Other) MarshalCBOR") {
		t.Errorf("expected Other.MarshalCBOR to be generated")
	}
}
