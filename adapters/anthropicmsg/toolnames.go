package anthropicmsg

// sanitizeToolName maps an arbitrary universal tool name to the character
// set Anthropic tool names allow (ASCII letters, digits, underscore,
// hyphen; max 64 runes), replacing every other rune with '_'. Unlike a
// toolset-namespaced canonical identifier, universal tool names carry no
// prefix to strip.
func sanitizeToolName(in string) string {
	if in == "" {
		return in
	}
	if isProviderSafeToolName(in) {
		return in
	}
	out := make([]rune, 0, len(in))
	for _, r := range in {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) > 64 {
		out = out[:64]
	}
	return string(out)
}

func isProviderSafeToolName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
