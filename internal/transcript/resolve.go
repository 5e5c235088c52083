package transcript

// ResolveToolNames fills in ToolResultBlock.ToolName from the ToolUseBlocks
// emitted by assistant entries. User entries that change are re-emitted as
// new values; every other entry is returned as the same pointer. Running it
// twice gives the same result as running it once.
func ResolveToolNames(entries []Entry) []Entry {
	names := make(map[string]string)
	for _, e := range entries {
		a, ok := e.(*AssistantEntry)
		if !ok {
			continue
		}
		for _, b := range a.Blocks {
			if tu, ok := b.(ToolUseBlock); ok && tu.ToolUseID != "" && tu.Name != "" {
				names[tu.ToolUseID] = tu.Name
			}
		}
	}

	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		u, ok := e.(*UserEntry)
		if !ok {
			continue
		}
		if resolved, changed := resolveUserEntry(u, names); changed {
			out[i] = resolved
		}
	}
	return out
}

func resolveUserEntry(u *UserEntry, names map[string]string) (*UserEntry, bool) {
	var blocks []ContentBlock
	for i, b := range u.Blocks {
		tr, ok := b.(ToolResultBlock)
		if !ok || tr.ToolName != "" {
			continue
		}
		name, found := names[tr.ToolUseID]
		if !found {
			continue
		}
		if blocks == nil {
			blocks = make([]ContentBlock, len(u.Blocks))
			copy(blocks, u.Blocks)
		}
		tr.ToolName = name
		blocks[i] = tr
	}
	if blocks == nil {
		return u, false
	}
	clone := *u
	clone.Blocks = blocks
	return &clone, true
}

// SuppressDuplicateUsage keeps token usage only on the first assistant entry
// of each message id; later entries with the same id are kept with their
// usage cleared so totals are not double counted.
func SuppressDuplicateUsage(entries []Entry) []Entry {
	seen := make(map[string]bool)
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		a, ok := e.(*AssistantEntry)
		if !ok || a.MessageID == "" {
			continue
		}
		if !seen[a.MessageID] {
			seen[a.MessageID] = true
			continue
		}
		if a.Usage != nil {
			clone := *a
			clone.Usage = nil
			out[i] = &clone
		}
	}
	return out
}
