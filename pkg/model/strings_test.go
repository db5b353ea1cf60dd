package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringTable(t *testing.T) {
	st := NewStringTable()
	assert.Equal(t, StringID(0), st.Put(""))

	a := st.Put("DOMEvent")
	b := st.Put("Paint")
	assert.Equal(t, a, st.Put("DOMEvent"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, "Paint", st.Lookup(b))
	assert.Equal(t, "", st.Lookup(42))
	assert.Equal(t, "", st.Lookup(-1))
	assert.Equal(t, 3, st.Len())
}
