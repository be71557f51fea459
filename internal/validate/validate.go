// Package validate decodes request bodies and query strings against JSON
// Schema documents and reports failures as a field-path to message map.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/problemhub/internal/apperr"
)

// Defaulter is implemented by decoded types that fill in optional fields.
type Defaulter interface {
	ApplyDefaults()
}

const requiredMessage = "Required"

// Schema is a compiled JSON Schema plus the Go-side bookkeeping the schema
// language cannot express: per-field messages and query coercion.
type Schema struct {
	name     string
	rs       *jsonschema.Schema
	required []string
	ints     map[string]bool
	bools    map[string]bool
	messages map[string]string
}

type prop struct {
	name     string
	def      map[string]any
	required bool
	message  string
	// element message for arrays, reported as name.N
	itemMessage string
}

func compile(name string, props []prop, extra map[string]any) *Schema {
	s := &Schema{
		name:     name,
		ints:     map[string]bool{},
		bools:    map[string]bool{},
		messages: map[string]string{},
	}
	properties := map[string]any{}
	for _, p := range props {
		properties[p.name] = p.def
		if p.required {
			s.required = append(s.required, p.name)
		}
		if p.message != "" {
			s.messages[p.name] = p.message
		}
		if p.itemMessage != "" {
			s.messages[p.name+".*"] = p.itemMessage
		}
		switch p.def["type"] {
		case "integer":
			s.ints[p.name] = true
		case "boolean":
			s.bools[p.name] = true
		}
	}
	doc := map[string]any{"type": "object", "properties": properties}
	for k, v := range extra {
		doc[k] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("validate: marshal schema %s: %v", name, err))
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		panic(fmt.Sprintf("validate: compile schema %s: %v", name, err))
	}
	s.rs = rs
	return s
}

// Name identifies the schema in logs.
func (s *Schema) Name() string { return s.name }

// DecodeBody reads a JSON body, validates it and decodes it into dst. An
// empty body is treated as an empty object.
func (s *Schema) DecodeBody(ctx context.Context, r io.Reader, dst any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		e := apperr.BadRequest(apperr.CodeInvalidJSON, "Invalid JSON payload")
		e.Err = err
		return e
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if !json.Valid(raw) {
		return apperr.BadRequest(apperr.CodeInvalidJSON, "Invalid JSON payload")
	}
	return s.decode(ctx, raw, dst)
}

// DecodeQuery coerces declared integer and boolean keys, then validates and
// decodes the result into dst. Only the first value of a repeated key is used.
func (s *Schema) DecodeQuery(ctx context.Context, q url.Values, dst any) error {
	doc := make(map[string]any, len(q))
	for k, vs := range q {
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		switch {
		case s.ints[k]:
			if n, err := strconv.Atoi(v); err == nil {
				doc[k] = n
				continue
			}
		case s.bools[k]:
			if v == "true" || v == "false" {
				doc[k] = v == "true"
				continue
			}
		}
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperr.Internal(fmt.Errorf("encode query: %w", err))
	}
	return s.decode(ctx, raw, dst)
}

func (s *Schema) decode(ctx context.Context, raw []byte, dst any) error {
	fields := map[string]string{}

	var obj map[string]any
	if json.Unmarshal(raw, &obj) == nil {
		for _, name := range s.required {
			if _, ok := obj[name]; !ok {
				fields[name] = requiredMessage
			}
		}
	}

	errs, err := s.rs.ValidateBytes(ctx, raw)
	if err != nil {
		return apperr.Internal(fmt.Errorf("validate %s: %w", s.name, err))
	}
	// stable order so the first error per field wins deterministically
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].PropertyPath < errs[j].PropertyPath })
	for _, ke := range errs {
		f := fieldPath(ke.PropertyPath)
		if _, seen := fields[f]; seen {
			continue
		}
		fields[f] = s.message(f, ke.Message)
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.BadRequest(apperr.CodeInvalidJSON, "Invalid JSON payload")
	}
	if d, ok := dst.(Defaulter); ok {
		d.ApplyDefaults()
	}
	return nil
}

// message prefers the field's configured message, then the message for its
// array items ("field.*"), then the validator's own text.
func (s *Schema) message(field, fallback string) string {
	if m, ok := s.messages[field]; ok {
		return m
	}
	if i := strings.LastIndexByte(field, '.'); i > 0 {
		if _, err := strconv.Atoi(field[i+1:]); err == nil {
			if m, ok := s.messages[field[:i]+".*"]; ok {
				return m
			}
		}
	}
	return fallback
}

// fieldPath converts a JSON pointer such as /referenceLinks/0 into
// referenceLinks.0. The document root is reported as "body".
func fieldPath(pointer string) string {
	p := strings.Trim(pointer, "/#")
	if p == "" {
		return "body"
	}
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(part)
	}
	return strings.Join(parts, ".")
}
