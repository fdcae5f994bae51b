
// Package pdf pulls text, page counts and a cover image candidate out of
// uploaded book PDFs. Extraction is best effort: scanned or malformed files
// degrade to an empty result instead of failing the caller.
package pdf

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Result is what could be recovered from a PDF. Any field may be zero.
type Result struct {
	Text      string
	PageCount int
	// Cover is the raw bytes of the first embedded image, if any.
	Cover     []byte
	CoverType string // e.g. "jpg", "png"
}

// Extract reads a PDF and recovers text (up to maxPages pages) plus a cover
// candidate. It never returns an error: a file pdfcpu cannot open yields a
// zero Result.
func Extract(data []byte, maxPages int) Result {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return Result{}
	}

	res := Result{PageCount: ctx.PageCount}

	pages := ctx.PageCount
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}
	var sb strings.Builder
	for pageNr := 1; pageNr <= pages; pageNr++ {
		pageText := extractPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(pageText)
	}
	res.Text = sb.String()

	res.Cover, res.CoverType = firstImage(ctx)
	return res
}

// firstImage scans the leading pages for an embedded image XObject, which for
// book PDFs is almost always the cover scan.
func firstImage(ctx *model.Context) ([]byte, string) {
	pages := ctx.PageCount
	if pages > 3 {
		pages = 3
	}
	for pageNr := 1; pageNr <= pages; pageNr++ {
		imgs, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			continue
		}
		for _, img := range imgs {
			b, err := io.ReadAll(img)
			if err != nil || len(b) == 0 {
				continue
			}
			return b, img.FileType
		}
	}
	return nil, ""
}

func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromStream walks content stream lines and collects the text-showing
// operators (Tj, TJ, ') plus positioning operators that imply whitespace.
func textFromStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodeString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if t := decodeString(m[1]); t != "" {
					sb.WriteByte('\n')
					sb.WriteString(t)
				}
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}
	return cleanText(sb.String())
}

// decodeString handles basic PDF escape sequences, including octal escapes.
func decodeString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanText collapses whitespace runs and drops non-printable runes.
func cleanText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
