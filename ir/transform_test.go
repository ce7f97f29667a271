package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSystemMessages_LeadingRunOnly(t *testing.T) {
	msgs := []Message{
		{Role: RoleSystem, Content: NewTextContent("a")},
		{Role: RoleSystem, Content: NewTextContent("b")},
		{Role: RoleUser, Content: NewTextContent("hi")},
		{Role: RoleSystem, Content: NewTextContent("late")},
	}

	system, rest := ExtractSystemMessages(msgs)
	require.Len(t, system, 2)
	require.Len(t, rest, 2)
	require.Equal(t, RoleUser, rest[0].Role)
	require.Equal(t, RoleSystem, rest[1].Role, "a system message after conversation start stays in place")
}

func TestExtractSystemMessages_NoSystem(t *testing.T) {
	msgs := []Message{{Role: RoleUser, Content: NewTextContent("hi")}}
	system, rest := ExtractSystemMessages(msgs)
	require.Nil(t, system)
	require.Equal(t, msgs, rest)
}

func TestFlattenConsecutiveMessages_MergesSameRole(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: NewTextContent("a")},
		{Role: RoleUser, Content: NewTextContent("b")},
		{Role: RoleAssistant, Content: NewTextContent("c")},
	}

	out := FlattenConsecutiveMessages(msgs)
	require.Len(t, out, 2)
	parts := out[0].Content.Normalize()
	require.Len(t, parts, 2)
	require.Equal(t, "a", parts[0].(TextPart).Text)
	require.Equal(t, "b", parts[1].(TextPart).Text)
}

func TestFlattenConsecutiveMessages_ToolMessagesNotMerged(t *testing.T) {
	msgs := []Message{
		{Role: RoleTool, ToolCallID: "t1", ToolContent: "r1"},
		{Role: RoleTool, ToolCallID: "t2", ToolContent: "r2"},
	}
	out := FlattenConsecutiveMessages(msgs)
	require.Len(t, out, 2)
}

func TestContentNormalize_StringEqualsSingleTextPart(t *testing.T) {
	fromString := NewTextContent("hello").Normalize()
	fromParts := NewPartsContent(TextPart{Text: "hello"}).Normalize()
	require.Equal(t, fromParts, fromString)
}
