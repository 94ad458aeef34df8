package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ContainsWorkflowTemplates(t *testing.T) {
	reg := Default()

	tests := []struct {
		key          string
		placeholders []string
	}{
		{KeyJDGenerate, []string{"jobName", "jobDescription", "mainPoint", "extraPoint", "bonusPoint"}},
		{KeyJDFocusPoints, []string{"jd"}},
		{KeyJDToJSON, []string{"jd", "weights"}},
		{KeyGradeResume, []string{"grade", "resume"}},
		{KeyJDPolish, []string{"text"}},
		{KeyJDExtractFields, []string{"text"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			tmpl, err := reg.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.placeholders, Placeholders(tmpl))
		})
	}
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Default().Get("nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		Default().MustGet("nonexistent-key")
	})
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, Default().MustGet(KeyGradeResume))
	})
}

func TestKeys_Sorted(t *testing.T) {
	keys := New(map[string]string{"b": "2", "a": "1", "c": "3"}).Keys()
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestNew_CopiesInput(t *testing.T) {
	src := map[string]string{"a": "one"}
	reg := New(src)
	src["a"] = "changed"

	tmpl, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "one", tmpl)
}

func TestMerge(t *testing.T) {
	base := New(map[string]string{"greet": "Hello {{name}}", "bye": "Bye {{name}}"})

	t.Run("replaces known key", func(t *testing.T) {
		merged, err := base.Merge(map[string]string{"greet": "Hi {{name}}"})
		require.NoError(t, err)
		assert.Equal(t, "Hi {{name}}", merged.MustGet("greet"))
		assert.Equal(t, "Bye {{name}}", merged.MustGet("bye"))
		assert.Equal(t, "Hello {{name}}", base.MustGet("greet"), "base registry must not change")
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		_, err := base.Merge(map[string]string{"other": "x"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown prompt key")
	})

	t.Run("rejects empty template", func(t *testing.T) {
		_, err := base.Merge(map[string]string{"greet": "  "})
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path returns defaults", func(t *testing.T) {
		reg, err := Load("")
		require.NoError(t, err)
		assert.Same(t, Default(), reg)
	})

	t.Run("json override", func(t *testing.T) {
		path := filepath.Join(dir, "prompts.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"jd-focus-points": "Key points of {{jd}}"}`), 0o644))

		reg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Key points of {{jd}}", reg.MustGet(KeyJDFocusPoints))
		assert.Equal(t, Default().MustGet(KeyJDGenerate), reg.MustGet(KeyJDGenerate))
	})

	t.Run("yaml override", func(t *testing.T) {
		path := filepath.Join(dir, "prompts.yaml")
		content := "grade-resume: |\n  Grade {{resume}} against {{grade}}\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		reg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Grade {{resume}} against {{grade}}\n", reg.MustGet(KeyGradeResume))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read prompt file")
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse prompt file")
	})
}

func TestRegistryRender(t *testing.T) {
	reg := Default()
	value := "say \"hi\"\nthen stop"

	// Free-text templates insert values as they are
	out, err := reg.Render(KeyJDFocusPoints, map[string]string{"jd": value})
	require.NoError(t, err)
	assert.Contains(t, out, value)

	// JSON-input templates escape them
	for _, key := range []string{KeyJDToJSON, KeyGradeResume, KeyJDExtractFields} {
		t.Run(key, func(t *testing.T) {
			assert.True(t, JSONInput(key))

			bindings := map[string]string{}
			for _, name := range Placeholders(reg.MustGet(key)) {
				bindings[name] = value
			}
			out, err := reg.Render(key, bindings)
			require.NoError(t, err)
			assert.Contains(t, out, `say \"hi\"\nthen stop`)
			assert.NotContains(t, out, value)
			assert.NotContains(t, out, "{{")
		})
	}

	assert.False(t, JSONInput(KeyJDGenerate))
	assert.False(t, JSONInput(KeyJDPolish))

	_, err = reg.Render("missing", nil)
	assert.Error(t, err)
}

func TestDefault_JSONInputPlaceholdersAreQuoted(t *testing.T) {
	reg := Default()
	for _, key := range reg.Keys() {
		if !JSONInput(key) {
			continue
		}
		tmpl := reg.MustGet(key)
		for _, name := range Placeholders(tmpl) {
			assert.Contains(t, tmpl, `"{{`+name+`}}"`, "%s: {{%s}} must sit inside a JSON string", key, name)
		}
	}
}
