
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Summary is the structured result of summarizing book text.
type Summary struct {
	Summary   string
	KeyPoints []string
	Genre     string
}

// ImageAnalysis is what the vision model read off a cover image.
type ImageAnalysis struct {
	Title            string
	Author           string
	Category         string
	CoverDescription string
	Tags             []string
	Description      string
}

// HistoryItem is one previously published post, used for style matching and
// repetition avoidance.
type HistoryItem struct {
	Text    string
	Caption string
}

// Generated is the output of history-aware post generation. Only the fields
// for the requested kind are populated.
type Generated struct {
	Quote       string
	Context     string
	Description string
	Summary     string
	KeyPoints   []string
}

// TextFor returns the post body for a kind, joining secondary fields.
func (g Generated) TextFor(kind string) string {
	switch kind {
	case "quote":
		if g.Context != "" {
			return g.Quote + "\n\n" + g.Context
		}
		return g.Quote
	case "description":
		return g.Description
	default:
		out := g.Summary
		for _, p := range g.KeyPoints {
			out += "\n• " + p
		}
		return out
	}
}

const (
	maxSummaryInput = 10000
	contextLimit    = 3000
	minContextText  = 100
	historyDepth    = 20
	minHistoryLen   = 20
	maxExamples     = 5
	exampleLen      = 200
	avoidLen        = 80
)

// GenerateSummary asks the model for a Persian summary of book text.
func (c *Client) GenerateSummary(ctx context.Context, text string, minWords, maxWords int) (Summary, error) {
	text = headRunes(text, maxSummaryInput)
	reply, err := c.chat(ctx, []message{{Role: "user", Content: summaryPrompt(text, minWords, maxWords)}}, 0.7, textTimeout)
	if err != nil {
		return Summary{}, err
	}
	res := ParseModelJSON(reply)
	if res.Kind != ParseOK {
		return Summary{}, fmt.Errorf("summary reply is not json: %s", headRunes(res.Raw, 120))
	}
	if msg := fieldString(res.Fields, "error"); msg != "" {
		return Summary{}, fmt.Errorf("model error: %s", msg)
	}
	s := Summary{
		Summary:   fieldString(res.Fields, "summary"),
		KeyPoints: fieldStrings(res.Fields, "key_points"),
		Genre:     fieldString(res.Fields, "genre"),
	}
	if s.Summary == "" {
		return Summary{}, fmt.Errorf("summary reply missing summary field")
	}
	return s, nil
}

// AnalyzeImage sends a cover image to the vision model. A reply that is not
// JSON is still useful prose, so it is returned as the description rather
// than an error; only transport failures and empty replies fail.
func (c *Client) AnalyzeImage(ctx context.Context, img []byte) (ImageAnalysis, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img)
	msgs := []message{{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: visionPrompt},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		},
	}}
	reply, err := c.chat(ctx, msgs, 0.3, visionTimeout)
	if err != nil {
		return ImageAnalysis{}, err
	}
	res := ParseModelJSON(reply)
	if res.Kind != ParseOK {
		if res.Raw == "" {
			return ImageAnalysis{}, fmt.Errorf("vision reply empty")
		}
		return ImageAnalysis{Description: res.Raw}, nil
	}
	if msg := fieldString(res.Fields, "error"); msg != "" {
		return ImageAnalysis{}, fmt.Errorf("model error: %s", msg)
	}
	return ImageAnalysis{
		Title:            fieldString(res.Fields, "title"),
		Author:           fieldString(res.Fields, "author"),
		Category:         fieldString(res.Fields, "category"),
		CoverDescription: fieldString(res.Fields, "cover_description"),
		Tags:             fieldStrings(res.Fields, "tags"),
		Description:      fieldString(res.Fields, "description"),
	}, nil
}

// GenerateFromHistory produces a new post of the given kind, steered away from
// repeating recent posts. With no usable history at all it degrades to a
// deterministic placeholder instead of calling the model.
func (c *Client) GenerateFromHistory(ctx context.Context, history []HistoryItem, kind, title, author, bookText string) (Generated, error) {
	examples, avoid := digestHistory(history)
	if len(examples) == 0 {
		return placeholderFor(kind, title, author), nil
	}

	prompt := generationPrompt(kind, title, author, ContextWindow(bookText), examples, avoid)
	reply, err := c.chat(ctx, []message{{Role: "user", Content: prompt}}, 0.9, visionTimeout)
	if err != nil {
		return Generated{}, err
	}
	res := ParseModelJSON(reply)
	if res.Kind != ParseOK {
		return Generated{}, fmt.Errorf("generation reply is not json: %s", headRunes(res.Raw, 120))
	}
	if msg := fieldString(res.Fields, "error"); msg != "" {
		return Generated{}, fmt.Errorf("model error: %s", msg)
	}
	g := Generated{
		Quote:       fieldString(res.Fields, "quote"),
		Context:     fieldString(res.Fields, "context"),
		Description: fieldString(res.Fields, "description"),
		Summary:     fieldString(res.Fields, "summary"),
		KeyPoints:   fieldStrings(res.Fields, "key_points"),
	}
	if g.TextFor(kind) == "" {
		return Generated{}, fmt.Errorf("generation reply missing %s field", kind)
	}
	return g, nil
}

// digestHistory keeps the newest entries, drops ones too short to teach
// anything, and splits them into style examples and openings to avoid.
func digestHistory(history []HistoryItem) (examples, avoid []string) {
	if len(history) > historyDepth {
		history = history[:historyDepth]
	}
	for _, h := range history {
		text := h.Text
		if text == "" {
			text = h.Caption
		}
		if runeLen(text) < minHistoryLen {
			continue
		}
		if len(examples) < maxExamples {
			examples = append(examples, headRunes(text, exampleLen))
		}
		if len(avoid) < maxExamples {
			avoid = append(avoid, headRunes(text, avoidLen))
		}
	}
	return examples, avoid
}

// ContextWindow extracts the slice of book text fed to the model: texts over
// the limit yield a window starting a quarter of the way in, skipping front
// matter. Short texts pass through whole; trivial ones are dropped.
func ContextWindow(text string) string {
	r := []rune(text)
	if len(r) <= minContextText {
		return ""
	}
	if len(r) <= contextLimit {
		return text
	}
	start := len(r) / 4
	end := start + contextLimit
	if end > len(r) {
		end = len(r)
	}
	return string(r[start:end])
}

func placeholderFor(kind, title, author string) Generated {
	byline := ""
	if author != "" {
		byline = " اثر " + author
	}
	switch kind {
	case "quote":
		return Generated{Quote: fmt.Sprintf("📖 جمله‌ای خواندنی از کتاب «%s»%s", title, byline)}
	case "description":
		return Generated{Description: fmt.Sprintf("کتاب «%s»%s را به شما معرفی می‌کنیم؛ اثری که ارزش خواندن دارد.", title, byline)}
	default:
		return Generated{Summary: fmt.Sprintf("نگاهی کوتاه به کتاب «%s»%s.", title, byline)}
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
