package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	js "github.com/santhosh-tekuri/jsonschema/v5"
)

// Names of the request body schemas
const (
	SubmitRequest = "submit_request"
	Quote         = "quote"
	StatusUpdate  = "status_update"
	Feedback      = "feedback"
)

var (
	ErrUnknownSchema = errors.New("unknown schema")
	ErrInvalidBody   = errors.New("invalid body")
)

//go:embed schemas/*.json
var schemaFS embed.FS

type Compiler struct {
	mu       sync.Mutex
	compiler *js.Compiler
	cache    *expirable.LRU[string, *js.Schema]
	names    map[string]bool
}

// NewCompilerWithCache registers the embedded body schemas. Compiled
// schemas are kept in an LRU of maxSize entries for ttl.
func NewCompilerWithCache(maxSize int, ttl time.Duration) (*Compiler, error) {
	c := js.NewCompiler()
	c.Draft = js.Draft7

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas: %w", err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		if err := c.AddResource(resourceURL(name), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
		names[name] = true
	}

	return &Compiler{
		compiler: c,
		cache:    expirable.NewLRU[string, *js.Schema](maxSize, nil, ttl),
		names:    names,
	}, nil
}

func resourceURL(name string) string {
	return "mem://schema/" + name + ".json"
}

// Prepare compiles and caches a schema
func (c *Compiler) Prepare(name string) (*js.Schema, error) {
	if compiled, ok := c.cache.Get(name); ok {
		return compiled, nil
	}
	if !c.names[name] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	// js.Compiler is not safe for concurrent use
	c.mu.Lock()
	defer c.mu.Unlock()
	compiled, err := c.compiler.Compile(resourceURL(name))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	c.cache.Add(name, compiled)
	return compiled, nil
}

// Validate checks a raw JSON body against a named schema. Violations
// are reported as ErrInvalidBody.
func (c *Compiler) Validate(name string, body []byte) error {
	compiled, err := c.Prepare(name)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	if err := compiled.Validate(value); err != nil {
		var verr *js.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrInvalidBody, describe(verr))
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	return nil
}

// describe flattens a validation error into "location: message" pairs
func describe(verr *js.ValidationError) string {
	var parts []string
	var walk func(e *js.ValidationError)
	walk = func(e *js.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			parts = append(parts, loc+": "+e.Message)
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return strings.Join(parts, "; ")
}
