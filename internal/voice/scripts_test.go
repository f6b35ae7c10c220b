package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryOptionHasDemoScript(t *testing.T) {
	assert.Equal(t, []string{"simon", "lena"}, OptionIDs())
	for _, id := range OptionIDs() {
		assert.NotEmpty(t, DemoScripts[id], id)
	}

	option, ok := LookupOption(DefaultVoice)
	assert.True(t, ok)
	assert.Equal(t, "Gabriel", option.Label)

	_, ok = LookupOption("gabriel")
	assert.False(t, ok)
}
