package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{
			name: "search and navigate",
			raw:  `{"action": "search_and_navigate", "topic": "vehicle registration"}`,
			want: SearchAndNavigate{Topic: "vehicle registration"},
		},
		{
			name: "agree and start form",
			raw:  `{"action": "agree_and_start_form"}`,
			want: AgreeAndStartForm{},
		},
		{
			name: "start form filling",
			raw:  `{"action": "start_form_filling"}`,
			want: StartFormFilling{},
		},
		{
			name: "click",
			raw:  `{"action": "click", "selector": "#submit"}`,
			want: Click{Selector: "#submit"},
		},
		{
			name: "fill",
			raw:  `{"action": "fill", "selector": "#name", "value": "Bob"}`,
			want: Fill{Selector: "#name", Value: "Bob"},
		},
		{
			name: "select",
			raw:  `{"action": "select", "selector": "#state", "value": "Oregon"}`,
			want: Select{Selector: "#state", OptionText: "Oregon"},
		},
		{
			name: "action is case-insensitive",
			raw:  `{"action": "CLICK", "selector": "#x"}`,
			want: Click{Selector: "#x"},
		},
		{
			name: "unknown action",
			raw:  `{"action": "teleport"}`,
			want: Unsupported{Action: "teleport", Raw: json.RawMessage(`{"action": "teleport"}`)},
		},
		{
			name: "missing action",
			raw:  `{"topic": "taxes"}`,
			want: Malformed{Raw: json.RawMessage(`{"topic": "taxes"}`)},
		},
		{
			name: "click without selector",
			raw:  `{"action": "click"}`,
			want: Malformed{Raw: json.RawMessage(`{"action": "click"}`)},
		},
		{
			name: "not an object",
			raw:  `42`,
			want: Malformed{Raw: json.RawMessage(`42`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeListSingleObject(t *testing.T) {
	commands, err := DecodeList(`{"action": "click", "selector": "#go"}`)
	require.NoError(t, err)
	require.Len(t, commands, 1)
	assert.Equal(t, Click{Selector: "#go"}, commands[0])
}

func TestDecodeListArray(t *testing.T) {
	commands, err := DecodeList(`[
		{"action": "search_and_navigate", "topic": "taxes"},
		{"action": "click", "selector": "#pay"}
	]`)
	require.NoError(t, err)
	require.Len(t, commands, 2)
	assert.Equal(t, SearchAndNavigate{Topic: "taxes"}, commands[0])
	assert.Equal(t, Click{Selector: "#pay"}, commands[1])
}

func TestDecodeListInvalid(t *testing.T) {
	_, err := DecodeList("this is not json")
	assert.Error(t, err)

	_, err = DecodeList("")
	assert.Error(t, err)

	_, err = DecodeList("[]")
	assert.Error(t, err)
}
