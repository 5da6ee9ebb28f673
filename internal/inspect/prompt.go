package inspect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/segment"
)

// BlockImage is a block of the manifest together with its encoded crop.
type BlockImage struct {
	Block segment.Block
	Path  string
	Data  []byte
}

// BlockLabel is the metadata the model sees for each attached image, in
// attachment order.
type BlockLabel struct {
	BlockID   string `json:"block_id"`
	BlockType string `json:"block_type"`
	ViewType  string `json:"view_type"`
}

// LoadBlocks reads the manifest in dir and the PNG of every block.
// Blocks whose image is missing are skipped; a directory without any
// block image fails with ErrNoBlocks.
func LoadBlocks(dir string) (segment.Manifest, []BlockImage, error) {
	m, err := segment.ReadManifest(filepath.Join(dir, segment.ManifestFile))
	if err != nil {
		return nil, nil, err
	}

	images := make([]BlockImage, 0, len(m))
	for _, b := range m {
		path := filepath.Join(dir, segment.BlockImageFile(b.ID))
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read block %s: %w", b.ID, err)
		}
		images = append(images, BlockImage{Block: b, Path: path, Data: data})
	}
	if len(images) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoBlocks, dir)
	}
	return m, images, nil
}

// Labels returns the prompt metadata for images.
func Labels(images []BlockImage) []BlockLabel {
	labels := make([]BlockLabel, 0, len(images))
	for _, img := range images {
		labels = append(labels, BlockLabel{
			BlockID:   img.Block.ID,
			BlockType: string(img.Block.Type),
			ViewType:  img.Block.ViewType,
		})
	}
	return labels
}

const promptTemplate = `
You are a GD&T compliance checker following ASME Y14.5-2018.

You are given:
- Multiple cropped blocks from ONE engineering drawing
- A checklist of GD&T rules

Block metadata:
%s

Checklist rules:
%s

Task:
For EACH rule:
- Decide YES / NO / NOT_APPLICABLE
- Give a short technical reason
- Give a recommendation to fix the issue if result is NO
- Base decision ONLY on visible content
- Do NOT assume missing info
- Do NOT infer intent

Return STRICT JSON ONLY in this format:
[
  {
    "rule_id": "R1",
    "result": "YES | NO | NOT_APPLICABLE",
    "reason": "...",
    "recommendation": "..."
  }
]
`

// BuildPrompt renders the instruction text sent with the block images.
func BuildPrompt(labels []BlockLabel, rules []Rule) (string, error) {
	if labels == nil {
		labels = []BlockLabel{}
	}
	meta, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode block metadata: %w", err)
	}
	checklist, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode rules: %w", err)
	}
	return strings.TrimLeft(fmt.Sprintf(promptTemplate, meta, checklist), "\n"), nil
}
