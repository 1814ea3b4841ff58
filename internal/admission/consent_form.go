package admission

import "strings"

type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockSubheading
	BlockBullet
	BlockBlank
)

// Block is one rendered line of a consent form.
type Block struct {
	Kind BlockKind
	Text string
}

// ParseConsentText splits consent form text into lines: "# " headings,
// "## " subheadings, "- " bullets, blank spacers and plain paragraphs.
func ParseConsentText(text string) []Block {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks, Block{Kind: BlockSubheading, Text: line[3:]})
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks, Block{Kind: BlockHeading, Text: line[2:]})
		case strings.HasPrefix(line, "- "):
			blocks = append(blocks, Block{Kind: BlockBullet, Text: line[2:]})
		case strings.TrimSpace(line) == "":
			blocks = append(blocks, Block{Kind: BlockBlank})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: line})
		}
	}
	return blocks
}
