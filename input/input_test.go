package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifiers(t *testing.T) {
	m := ModShift | ModCtrl
	assert.True(t, m.Has(ModShift))
	assert.False(t, m.Has(ModAlt))
	assert.True(t, m.IsAccelerator())
	assert.False(t, ModShift.IsAccelerator())
	assert.Equal(t, "Ctrl+Shift", m.String())
	assert.Equal(t, "", ModNone.String())
	assert.Equal(t, Modifiers(1), ModShift)
	assert.Equal(t, Modifiers(8), ModMeta)
}
