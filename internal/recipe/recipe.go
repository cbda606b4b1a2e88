// Package recipe describes a replayable edit: an ordered list of
// destructive operations plus the tonal parameters to bake with.
package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/photoedit/internal/adjust"
	"github.com/AnyUserName/photoedit/internal/session"
	"github.com/AnyUserName/photoedit/internal/transform"
	"gopkg.in/yaml.v3"
)

// Op is one destructive operation.
type Op string

const (
	OpRotate   Op = "rotate"
	OpFlipH    Op = "flip-h"
	OpFlipV    Op = "flip-v"
	OpInvert   Op = "invert"
	OpRemoveBG Op = "remove-bg"
)

var aliases = map[string]Op{
	"rotate":          OpRotate,
	"rotate90":        OpRotate,
	"rotate-90":       OpRotate,
	"flip-h":          OpFlipH,
	"fliph":           OpFlipH,
	"flip-horizontal": OpFlipH,
	"flip-v":          OpFlipV,
	"flipv":           OpFlipV,
	"flip-vertical":   OpFlipV,
	"invert":          OpInvert,
	"remove-bg":       OpRemoveBG,
	"removebg":        OpRemoveBG,
	"rembg":           OpRemoveBG,
}

// ParseOp resolves an operation name or alias.
func ParseOp(s string) (Op, error) {
	if op, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// ParseOps resolves a list of operation names, keeping their order.
func ParseOps(names []string) ([]Op, error) {
	ops := make([]Op, 0, len(names))
	for _, n := range names {
		op, err := ParseOp(n)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Recipe is an ordered edit script.
type Recipe struct {
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Ops           []Op   `json:"ops" yaml:"ops"`
	adjust.Params `yaml:",inline"`
}

// New returns an empty recipe with neutral parameters.
func New() *Recipe {
	return &Recipe{Params: adjust.Defaults()}
}

// Load reads a recipe from a .json, .yaml or .yml file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	var r *Recipe
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		r, err = ParseYAML(data)
	default:
		r, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseJSON decodes a JSON recipe. Missing parameters keep their neutral
// defaults; unknown fields are rejected.
func ParseJSON(data []byte) (*Recipe, error) {
	r := New()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(r); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	return r, r.Validate()
}

// ParseYAML decodes a YAML recipe with the same rules as ParseJSON.
func ParseYAML(data []byte) (*Recipe, error) {
	r := New()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(r); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}
	return r, r.Validate()
}

// Validate checks that every operation is known. Out-of-range parameters
// are not an error; they are clamped when applied.
func (r *Recipe) Validate() error {
	for i, op := range r.Ops {
		if _, err := ParseOp(string(op)); err != nil {
			return fmt.Errorf("ops[%d]: %w", i, err)
		}
	}
	return nil
}

// NeedsMatte reports whether the recipe removes a background.
func (r *Recipe) NeedsMatte() bool {
	for _, op := range r.Ops {
		if op == OpRemoveBG {
			return true
		}
	}
	return false
}

// Apply replays the operations on s in order, then sets the parameters.
// It stops at the first failing operation.
func (r *Recipe) Apply(ctx context.Context, s *session.Session) error {
	for i, op := range r.Ops {
		op, err := ParseOp(string(op))
		if err != nil {
			return fmt.Errorf("ops[%d]: %w", i, err)
		}
		switch op {
		case OpRotate:
			err = s.Rotate90Clockwise()
		case OpFlipH:
			err = s.Flip(transform.Horizontal)
		case OpFlipV:
			err = s.Flip(transform.Vertical)
		case OpInvert:
			err = s.InvertColors()
		case OpRemoveBG:
			err = s.RemoveBackground(ctx)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	s.SetParams(r.Params)
	return nil
}

// OpNames returns the canonical operation names.
func (r *Recipe) OpNames() []string {
	names := make([]string, 0, len(r.Ops))
	for _, op := range r.Ops {
		if c, err := ParseOp(string(op)); err == nil {
			op = c
		}
		names = append(names, string(op))
	}
	return names
}

// Summary is a one-line description for logs and reports.
func (r *Recipe) Summary() string {
	ops := "none"
	if len(r.Ops) > 0 {
		ops = strings.Join(r.OpNames(), ",")
	}
	p := r.Params.Clamp()
	return fmt.Sprintf("ops=%s brightness=%d contrast=%.2f sepia=%d", ops, p.Brightness, p.Contrast, p.Sepia)
}
