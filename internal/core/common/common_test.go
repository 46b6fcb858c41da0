package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdempotent(t *testing.T) {
	names := []string{" Kenya ", "kenya", "MASAI Mara", "  ", "Okavango Delta"}
	for _, n := range names {
		once := Normalize(n)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("kenya"), Normalize(" Kenya "))
	assert.Equal(t, Normalize("masai mara"), Normalize("Masai Mara"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "masai-mara", Slugify("Masai Mara"))
	assert.Equal(t, "angama-mara", Slugify("  Angama Mara!  "))
	assert.Equal(t, "sossusvlei-dead-vlei", Slugify("Sossusvlei & Dead Vlei"))
	assert.Equal(t, "camp-2", Slugify("Camp #2"))
	assert.Equal(t, "", Slugify("---"))
}

func TestRefID(t *testing.T) {
	assert.Equal(t, "42", RefID(float64(42)))
	assert.Equal(t, "42", RefID(42))
	assert.Equal(t, "abc", RefID(" abc "))
	assert.Equal(t, "7", RefID(map[string]interface{}{"id": float64(7)}))
	assert.Equal(t, "7", RefID(map[string]interface{}{"id": "7"}))
	assert.Equal(t, "", RefID(nil))
	assert.Equal(t, "", RefID(map[string]interface{}{"name": "x"}))
	assert.Equal(t, "", RefID([]string{"nope"}))
}

func TestParseJSONPlainObject(t *testing.T) {
	type out struct {
		Name string `json:"name"`
	}
	v, err := ParseJSON[out](`{"name": "Kenya"}`)
	assert.NoError(t, err)
	assert.Equal(t, "Kenya", v.Name)
}

func TestParseJSONWithFencesAndProse(t *testing.T) {
	type out struct {
		Name string `json:"name"`
	}
	resp := "Here you go:\n```json\n{\"name\": \"Kenya\"}\n```\nLet me know if you need more."
	v, err := ParseJSON[out](resp)
	assert.NoError(t, err)
	assert.Equal(t, "Kenya", v.Name)
}

func TestParseJSONArray(t *testing.T) {
	v, err := ParseJSON[[]string](`["a", "b"]`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestParseJSONNoPayload(t *testing.T) {
	_, err := ParseJSON[map[string]interface{}]("sorry, I cannot help with that")
	assert.Error(t, err)
}
