package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bjaus/apidoc"
	"github.com/bjaus/apidoc/schema"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: :9090\ntitle: Tasks\nspec_refresh: 1m\nlog_level: debug\n"), 0o600))

	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "Tasks", cfg.Title)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, time.Minute, cfg.SpecRefresh)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteSpec(t *testing.T) {
	t.Parallel()

	r := newRouter(defaultConfig(), slog.New(slog.DiscardHandler))

	tests := map[string]struct {
		format  string
		wantErr bool
	}{
		"json":    {format: "json"},
		"yaml":    {format: "yaml"},
		"yml":     {format: "yml"},
		"unknown": {format: "toml", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := writeSpec(r, &buf, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var doc map[string]any
			require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
			assert.Equal(t, "3.1.0", doc["openapi"])
		})
	}
}

func TestSampleSpec(t *testing.T) {
	t.Parallel()

	r := newRouter(defaultConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, r.ValidateSpec(context.Background()))

	doc := r.Spec()
	assert.Equal(t, "Todo API", doc.Info.Title)

	// Todo's title is a plain string, Project's name carries minLength.
	// Both are reused, so each is its own component.
	title := property(t, doc.Components.Schemas["Todo"], "title")
	name := property(t, doc.Components.Schemas["Project"], "name")
	require.NotEmpty(t, title.Ref)
	require.NotEmpty(t, name.Ref)
	assert.NotEqual(t, title.Ref, name.Ref)

	plain := resolve(t, doc, title)
	assert.Equal(t, "string", plain.Type)
	assert.Nil(t, plain.MinLength)

	constrained := resolve(t, doc, name)
	assert.Equal(t, "string", constrained.Type)
	require.NotNil(t, constrained.MinLength)
	assert.Equal(t, 1, *constrained.MinLength)

	assert.Contains(t, doc.Components.Schemas, "ProblemDetail")
	assert.Contains(t, doc.Components.Schemas, "ShapeCircle")
	assert.Contains(t, doc.Components.Schemas, "ShapeRect")
}

func property(t *testing.T, s *schema.Schema, name string) *schema.Schema {
	t.Helper()
	require.NotNil(t, s)
	p, ok := s.Properties.Get(name)
	require.True(t, ok, "missing property %q", name)
	return p
}

func resolve(t *testing.T, doc *apidoc.Document, s *schema.Schema) *schema.Schema {
	t.Helper()
	name, ok := strings.CutPrefix(s.Ref, "#/components/schemas/")
	require.True(t, ok, "not a component reference: %q", s.Ref)
	c, ok := doc.Components.Schemas[name]
	require.True(t, ok, "missing component %q", name)
	return c
}
