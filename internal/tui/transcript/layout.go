// Package transcript renders the conversation: a greeting when empty, one
// bubble per turn, and a thinking indicator while a reply is pending.
package transcript

import "github.com/samsaffron/jarvis/internal/llm"

// BlockKind identifies what a transcript block shows.
type BlockKind int

const (
	BlockGreeting BlockKind = iota
	BlockTurn
	BlockThinking
)

// Block is one visual element of the transcript.
type Block struct {
	Kind BlockKind
	Turn llm.Turn // set for BlockTurn
	// AlignRight is true for user turns; every other block sits on the left
	// (the greeting is centered).
	AlignRight bool
}

// Layout projects the turns and the pending flag onto the blocks to render,
// top to bottom. The greeting is shown only for an empty, idle conversation;
// the thinking block, when present, is always last.
func Layout(turns []llm.Turn, pending bool) []Block {
	blocks := make([]Block, 0, len(turns)+1)
	if len(turns) == 0 && !pending {
		return append(blocks, Block{Kind: BlockGreeting})
	}
	for _, t := range turns {
		blocks = append(blocks, Block{
			Kind:       BlockTurn,
			Turn:       t,
			AlignRight: t.Role == llm.RoleUser,
		})
	}
	if pending {
		blocks = append(blocks, Block{Kind: BlockThinking})
	}
	return blocks
}
