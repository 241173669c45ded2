package mcp

import (
	"context"
	"strings"
	"testing"
)

func testDescriptor() *ToolDescriptor {
	return &ToolDescriptor{
		Name:        "echo",
		Description: "test tool",
		Params: []Param{
			{Name: "text", Type: "string", Required: true},
			{Name: "mode", Type: "string", Enum: []string{"plain", "loud"}, Default: "plain"},
			{Name: "count", Type: "number", Default: float64(1)},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return args["text"].(string), nil
		},
	}
}

func TestValidateArgsAppliesDefaults(t *testing.T) {
	d := testDescriptor()
	args, err := d.ValidateArgs(map[string]interface{}{"text": "hi"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if args["mode"] != "plain" {
		t.Errorf("Expected default mode plain, got %v", args["mode"])
	}
	if args["count"] != float64(1) {
		t.Errorf("Expected default count 1, got %v", args["count"])
	}
}

func TestValidateArgsMissingRequired(t *testing.T) {
	d := testDescriptor()
	_, err := d.ValidateArgs(map[string]interface{}{})
	if err == nil || !strings.Contains(err.Error(), "missing required argument: text") {
		t.Errorf("Expected missing required error, got %v", err)
	}
}

func TestValidateArgsEnum(t *testing.T) {
	d := testDescriptor()
	_, err := d.ValidateArgs(map[string]interface{}{"text": "hi", "mode": "whisper"})
	if err == nil || !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("Expected enum error, got %v", err)
	}
}

func TestValidateArgsTypeMismatch(t *testing.T) {
	d := testDescriptor()

	if _, err := d.ValidateArgs(map[string]interface{}{"text": 5.0}); err == nil {
		t.Error("Expected error for non-string text")
	}
	if _, err := d.ValidateArgs(map[string]interface{}{"text": "hi", "count": "three"}); err == nil {
		t.Error("Expected error for non-number count")
	}
}

func TestValidateArgsDropsUndeclared(t *testing.T) {
	d := testDescriptor()
	args, err := d.ValidateArgs(map[string]interface{}{"text": "hi", "bogus": true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := args["bogus"]; ok {
		t.Error("Expected undeclared argument to be dropped")
	}
}

func TestInputSchema(t *testing.T) {
	d := testDescriptor()
	schema := d.InputSchema()

	if schema.Type != "object" {
		t.Errorf("Expected object schema, got %s", schema.Type)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "text" {
		t.Errorf("Expected required=[text], got %v", schema.Required)
	}
	mode := schema.Properties["mode"]
	if mode.Default != "plain" || len(mode.Enum) != 2 {
		t.Errorf("Expected mode enum and default in schema, got %+v", mode)
	}
}

func TestRegistryListOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&ToolDescriptor{Name: "b"})
	r.Register(&ToolDescriptor{Name: "a"})

	tools := r.List()
	if len(tools) != 2 || tools[0].Name != "b" || tools[1].Name != "a" {
		t.Errorf("Expected registration order preserved, got %v", tools)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(testDescriptor())

	if _, ok := r.Lookup("echo"); !ok {
		t.Error("Expected to find registered tool")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Did not expect to find unregistered tool")
	}
}
