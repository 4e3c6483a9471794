package domain

import (
	"encoding/json"
	"path/filepath"
	"strings"

	m "github.com/mouse-blink/scenario/internal/model"
)

// sourceMapV3 is the standard Source Map v3 document shape consumed by
// debuggers and stack-trace mappers.
type sourceMapV3 struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// EncodeSourceMap renders the position map as a Source Map v3 JSON document
// so downstream stack traces and breakpoints resolve to author-written lines.
func EncodeSourceMap(pm *m.PositionMap, sourceContent []byte) ([]byte, error) {
	doc := sourceMapV3{
		Version:        3,
		File:           filepath.Base(string(pm.File)),
		Sources:        []string{string(pm.File)},
		SourcesContent: []string{string(sourceContent)},
		Names:          []string{},
		Mappings:       encodeMappings(pm.Mappings),
	}

	return json.Marshal(doc)
}

// encodeMappings emits the semicolon/comma separated base64-VLQ segment
// string. Segment fields are [outCol, sourceIndex, inLine, inCol]; the output
// column delta resets per line while the remaining fields accumulate across
// the whole document, per the format.
func encodeMappings(mappings []m.Mapping) string {
	var sb strings.Builder

	curLine := 1
	prevOutCol := 0
	prevInLine := 0
	prevInCol := 0
	segmentOnLine := false

	for _, mp := range mappings {
		for curLine < mp.OutLine {
			sb.WriteByte(';')
			curLine++
			prevOutCol = 0
			segmentOnLine = false
		}

		if segmentOnLine {
			sb.WriteByte(',')
		}

		appendVLQ(&sb, mp.OutCol-prevOutCol)
		appendVLQ(&sb, 0) // single source
		appendVLQ(&sb, (mp.InLine-1)-prevInLine)
		appendVLQ(&sb, mp.InCol-prevInCol)

		prevOutCol = mp.OutCol
		prevInLine = mp.InLine - 1
		prevInCol = mp.InCol
		segmentOnLine = true
	}

	return sb.String()
}

const vlqChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func appendVLQ(sb *strings.Builder, value int) {
	var u uint32
	if value < 0 {
		u = uint32(-value)<<1 | 1
	} else {
		u = uint32(value) << 1
	}

	for {
		digit := u & 0x1f
		u >>= 5

		if u > 0 {
			digit |= 0x20
		}

		sb.WriteByte(vlqChars[digit])

		if u == 0 {
			return
		}
	}
}
