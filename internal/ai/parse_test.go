
package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelJSON_Plain(t *testing.T) {
	res := ParseModelJSON(`{"quote": "متن", "context": "ctx"}`)
	require.Equal(t, ParseOK, res.Kind)
	assert.Equal(t, "متن", fieldString(res.Fields, "quote"))
	assert.Equal(t, "ctx", fieldString(res.Fields, "context"))
}

func TestParseModelJSON_Fenced(t *testing.T) {
	reply := "```json\n{\"summary\": \"خلاصه\", \"key_points\": [\"a\", \"b\"]}\n```"
	res := ParseModelJSON(reply)
	require.Equal(t, ParseOK, res.Kind)
	assert.Equal(t, "خلاصه", fieldString(res.Fields, "summary"))
	assert.Equal(t, []string{"a", "b"}, fieldStrings(res.Fields, "key_points"))
}

func TestParseModelJSON_BareFence(t *testing.T) {
	res := ParseModelJSON("```\n{\"description\": \"d\"}\n```")
	require.Equal(t, ParseOK, res.Kind)
	assert.Equal(t, "d", fieldString(res.Fields, "description"))
}

func TestParseModelJSON_Prose(t *testing.T) {
	res := ParseModelJSON("متاسفانه نمی‌توانم این کار را انجام دهم.")
	assert.Equal(t, ParseMalformed, res.Kind)
	assert.Equal(t, "متاسفانه نمی‌توانم این کار را انجام دهم.", res.Raw)
}

func TestParseModelJSON_Truncated(t *testing.T) {
	res := ParseModelJSON(`{"quote": "نیمه`)
	assert.Equal(t, ParseMalformed, res.Kind)
}

func TestFieldHelpers_WrongTypes(t *testing.T) {
	res := ParseModelJSON(`{"quote": 42, "key_points": "not a list"}`)
	require.Equal(t, ParseOK, res.Kind)
	assert.Empty(t, fieldString(res.Fields, "quote"))
	assert.Nil(t, fieldStrings(res.Fields, "key_points"))
}
