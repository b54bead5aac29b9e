package conversation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTurnRendering(t *testing.T) {
	assert.Equal(t, "Alice: Hi\n", NewPrompt("Alice", "Hi").String())
	assert.Equal(t, "Bot: Hello\n\n---\n", NewResponse("Bot", "Hello").String())
}

func TestUnknownRoleRendersMarked(t *testing.T) {
	out := Turn{Role: "Whisper", Author: "Alice", Text: "psst"}.String()
	assert.Equal(t, "%!(BADROLE=\"Whisper\")Alice: psst\n", out)
	assert.NotEqual(t, NewPrompt("Alice", "psst").String(), out)

	var zero Turn
	assert.Contains(t, zero.String(), "BADROLE")
}

func TestEmptyDialogueRendersEmpty(t *testing.T) {
	var d Dialogue
	assert.Equal(t, "", d.String())
	assert.True(t, d.IsEmpty())
	assert.Equal(t, 0, d.Len())

	d.Clear()
	assert.True(t, d.IsEmpty())
}

func TestDialoguePreservesAppendOrder(t *testing.T) {
	var d Dialogue
	d.Append(NewPrompt("Alice", "one"))
	d.Append(NewResponse("Bot", "two"))
	d.Append(NewPrompt("Alice", "three"))
	d.Append(NewPrompt("Alice", "three"))

	expected := "Alice: one\nBot: two\n\n---\nAlice: three\nAlice: three\n"
	assert.Equal(t, expected, d.String())
	assert.Equal(t, expected, d.String(), "rendering must be idempotent")
	assert.Equal(t, 4, d.Len())
	assert.False(t, d.IsEmpty())
}

func TestDialogueClear(t *testing.T) {
	d := NewDialogue(NewPrompt("a", "b"), NewResponse("c", "d"))
	d.Clear()
	assert.True(t, d.IsEmpty())
	assert.Equal(t, "", d.String())
}

func TestKeepLast(t *testing.T) {
	d := NewDialogue(
		NewPrompt("a", "1"),
		NewResponse("b", "2"),
		NewPrompt("a", "3"),
		NewResponse("b", "4"),
	)

	assert.Equal(t, 0, d.KeepLast(10))
	assert.Equal(t, 4, d.Len())

	assert.Equal(t, 1, d.KeepLast(3))
	require.Equal(t, 3, d.Len())
	turns := d.Turns()
	assert.Equal(t, "2", turns[0].Text)
	assert.Equal(t, "3", turns[1].Text)
	assert.Equal(t, "4", turns[2].Text)

	assert.Equal(t, 3, d.KeepLast(0))
	assert.True(t, d.IsEmpty())
}

func TestTurnsReturnsCopy(t *testing.T) {
	d := NewDialogue(NewPrompt("a", "1"))
	turns := d.Turns()
	turns[0].Text = "changed"
	assert.Equal(t, "1", d.Turns()[0].Text)
}

func TestCloneDoesNotAlias(t *testing.T) {
	d := NewDialogue(NewPrompt("a", "1"))
	c := d.Clone()
	c.Append(NewResponse("b", "2"))
	d.Clear()

	assert.Equal(t, 0, d.Len())
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "a: 1\nb: 2\n\n---\n", c.String())
}

func TestTurnJSONShape(t *testing.T) {
	b, err := json.Marshal(NewPrompt("Alexis", "Who is god?"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Prompt":{"author":"Alexis","prompt":"Who is god?"}}`, string(b))

	b, err = json.Marshal(NewResponse("God", "Me."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Response":{"author":"God","prompt":"Me."}}`, string(b))
}

func TestDialogueJSONRoundTrip(t *testing.T) {
	d := NewDialogue(
		NewPrompt("Alexis", "Who is god?"),
		NewResponse("God", "Well, now that you ask..."),
	)
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded Dialogue
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, d.Turns(), decoded.Turns())
	assert.Equal(t, d.String(), decoded.String())
}

func TestEmptyDialogueMarshalsAsArray(t *testing.T) {
	b, err := json.Marshal(Dialogue{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestTurnJSONRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"unknown variant": `{"Narration":{"author":"a","prompt":"b"}}`,
		"two variants":    `{"Prompt":{"author":"a","prompt":"b"},"Response":{"author":"a","prompt":"b"}}`,
		"no variant":      `{}`,
		"missing author":  `{"Prompt":{"prompt":"b"}}`,
		"missing text":    `{"Response":{"author":"a"}}`,
		"not an object":   `"Prompt"`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			var turn Turn
			assert.Error(t, json.Unmarshal([]byte(input), &turn))
		})
	}
}

func TestDialogueYAMLRoundTrip(t *testing.T) {
	d := NewDialogue(
		NewPrompt("Alexis", "Here, take this minion."),
		NewResponse("Kirby", "Oof! Thanks for that!"),
	)
	b, err := yaml.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Prompt:")
	assert.Contains(t, string(b), "Response:")

	var decoded Dialogue
	require.NoError(t, yaml.Unmarshal(b, &decoded))
	assert.Equal(t, d.Turns(), decoded.Turns())
}

func TestTurnYAMLRejectsUnknownVariant(t *testing.T) {
	var d Dialogue
	err := yaml.Unmarshal([]byte("- Aside:\n    author: a\n    prompt: b\n"), &d)
	assert.ErrorIs(t, err, ErrInvalidTurn)
}
