package effect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/ledglow/internal/color"
)

func writeDef(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "fade.json", `{"name":"Warm fade","effect":"fade","args":{"fade-time":2.0,"color-end":[0,0,0]}}`)
	writeDef(t, dir, "broken.json", `{"name":`)
	writeDef(t, dir, "unknown.json", `{"name":"X","effect":"nope"}`)
	writeDef(t, dir, "notes.txt", `ignored`)

	defs, err := ReadDefinitionDir(dir, Builtin())
	assert.NoError(t, err)
	assert.Len(t, defs, 1)
	assert.Equal(t, "Warm fade", defs[0].Name)
	assert.Equal(t, "fade", defs[0].Effect)
	assert.Equal(t, 2.0, defs[0].Args.Float("fade-time", 5.0))
	assert.Equal(t, color.Black, defs[0].Args.Color("color-end", color.New(9, 9, 9)))
}

func TestReadDefinitionRequiresFields(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "x.json", `{"name":"only a name"}`)
	_, err := ReadDefinition(filepath.Join(dir, "x.json"))
	assert.Error(t, err)
}

func TestBuiltinRegistry(t *testing.T) {
	reg := Builtin()
	assert.Equal(t, []string{"breathe", "fade", "rainbow", "solid"}, reg.List())
	e, ok := reg.Get("fade")
	assert.True(t, ok)
	assert.Equal(t, "fade", e.Name())
	_, ok = reg.Get("nope")
	assert.False(t, ok)
}
