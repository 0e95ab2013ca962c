package providerspec

import "testing"

import "github.com/stretchr/testify/assert"

func TestSpec_Supports(t *testing.T) {
	s := &Spec{Capabilities: map[Capability]bool{CapChat: true}}
	assert.True(t, s.Supports(CapChat))
	assert.False(t, s.Supports(CapRerank))

	var nilCaps Spec
	assert.False(t, nilCaps.Supports(CapChat))
}
