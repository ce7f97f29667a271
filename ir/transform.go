package ir

// ExtractSystemMessages splits leading System-role messages out of a
// transcript into their own slice, returning the remainder unchanged. Only
// a contiguous leading run of System messages is extracted, matching how
// providers with a top-level "system" field (Anthropic, Google) expect it:
// a system message appearing after conversation has started is left in
// place rather than silently reordered.
func ExtractSystemMessages(msgs []Message) (system []Message, rest []Message) {
	i := 0
	for i < len(msgs) && msgs[i].Role == RoleSystem {
		i++
	}
	if i == 0 {
		return nil, msgs
	}
	system = make([]Message, i)
	copy(system, msgs[:i])
	rest = make([]Message, len(msgs)-i)
	copy(rest, msgs[i:])
	return system, rest
}

// FlattenConsecutiveMessages merges adjacent same-role messages into one,
// concatenating their content parts in order. Required by Anthropic and
// Google, which reject (or silently misbehave on) consecutive same-role
// turns. Tool calls and tool-message fields are concatenated/overwritten in
// message order; the merge never reorders content across the merged group.
func FlattenConsecutiveMessages(msgs []Message) []Message {
	if len(msgs) == 0 {
		return msgs
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if n := len(out); n > 0 && out[n-1].Role == m.Role && m.Role != RoleTool {
			out[n-1] = mergeMessages(out[n-1], m)
			continue
		}
		out = append(out, m)
	}
	return out
}

func mergeMessages(a, b Message) Message {
	merged := a
	merged.Content = Content{
		Parts:   append(a.Content.Normalize(), b.Content.Normalize()...),
		IsParts: true,
	}
	merged.ToolCalls = append(append([]ToolCall{}, a.ToolCalls...), b.ToolCalls...)
	return merged
}
