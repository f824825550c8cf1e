package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoveryScriptEscapesAttributeSelectors(t *testing.T) {
	// Ids, names, and class tokens all flow into CSS selectors; any of
	// them may contain quotes or other selector metacharacters.
	assert.Contains(t, discoverFieldsScript, `CSS.escape(el.id)`)
	assert.Contains(t, discoverFieldsScript, `CSS.escape(el.name)`)
	assert.NotContains(t, discoverFieldsScript, `'[name="' + el.name`)
}
