package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return store
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetSection("llm", map[string]any{"primary_model": "gpt-4o-mini"}))
	require.NoError(t, store.Save())

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	data, err := reloaded.GetSection("llm")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", data["primary_model"])
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t)
	data, err := store.GetSection("anything")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileStoreGetSectionReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetSection("voice", map[string]any{"silence_delay_ms": float64(2000)}))

	data, err := store.GetSection("voice")
	require.NoError(t, err)
	data["silence_delay_ms"] = float64(1)

	again, err := store.GetSection("voice")
	require.NoError(t, err)
	assert.Equal(t, float64(2000), again["silence_delay_ms"])
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestManagerLoadAndSave(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetSection(SectionIDLLM, map[string]any{
		"primary_model":  "gpt-4o-mini",
		"simplify_model": "gpt-4o",
	}))

	manager := NewManager(store)
	llm := NewLLMSection()
	require.NoError(t, manager.RegisterSection(llm))
	require.NoError(t, manager.RegisterSection(NewVoiceSection()))
	require.NoError(t, manager.RegisterSection(NewBrowserSection()))

	require.NoError(t, manager.LoadAll())
	assert.Equal(t, "gpt-4o-mini", llm.PrimaryModel)
	assert.Equal(t, "gpt-4o", llm.ModelFor("simplify"))
	assert.Equal(t, "gpt-4o-mini", llm.ModelFor("classify"))

	require.NoError(t, manager.SaveAll())
	data, err := store.GetSection(SectionIDVoice)
	require.NoError(t, err)
	assert.Equal(t, -50.0, data["silence_threshold_db"])
}

func TestManagerDuplicateSection(t *testing.T) {
	manager := NewManager(newTestStore(t))
	require.NoError(t, manager.RegisterSection(NewLLMSection()))
	assert.Error(t, manager.RegisterSection(NewLLMSection()))
}

func TestLLMSectionValidate(t *testing.T) {
	section := NewLLMSection()
	assert.NoError(t, section.Validate())

	section.SecondaryModel = "llama3"
	section.SecondaryBaseURL = ""
	assert.Error(t, section.Validate())

	section.SecondaryBaseURL = "http://localhost:11434/v1"
	assert.NoError(t, section.Validate())
}

func TestVoiceSectionValidate(t *testing.T) {
	section := NewVoiceSection()
	assert.NoError(t, section.Validate())

	section.SilenceDelayMS = 0
	assert.Error(t, section.Validate())

	section.SilenceDelayMS = 20000
	section.MaxRecordingMS = 15000
	assert.Error(t, section.Validate())
}

func TestBrowserSectionRoundTrip(t *testing.T) {
	section := NewBrowserSection()
	require.NoError(t, section.SetData(map[string]any{
		"headless":             true,
		"allowed_url_patterns": []any{"services.example/**"},
		"synonyms_file":        "/etc/aura/synonyms.yaml",
	}))

	data := section.Data()
	assert.Equal(t, true, data["headless"])
	assert.Equal(t, []any{"services.example/**"}, data["allowed_url_patterns"])
	assert.Equal(t, "/etc/aura/synonyms.yaml", data["synonyms_file"])
}
