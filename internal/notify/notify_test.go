package notify

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"Error: boom"}, splitMessage("Error: boom"))
	assert.Equal(t, []string{"a", "b"}, splitMessage("a\n\n b \n"))
	assert.Empty(t, splitMessage("  \n "))

	long := strings.Repeat("word ", 40)
	lines := splitMessage(long)
	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), MaxLineLength)
	}
	assert.Equal(t, strings.Join(strings.Fields(long), " "), strings.Join(lines, " "))

	huge := strings.Repeat("x", MaxLineLength*2+5)
	lines = splitMessage(huge)
	assert.Equal(t, []string{strings.Repeat("x", MaxLineLength), strings.Repeat("x", MaxLineLength), "xxxxx"}, lines)
}

func TestAlert(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)

	n.Alert("Error: room closed")
	assert.Equal(t, "+--------------------+\n| Error: room closed |\n+--------------------+\n", buf.String())

	buf.Reset()
	n.Alert("")
	assert.Empty(t, buf.String())
}
