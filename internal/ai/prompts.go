
package ai

import (
	"fmt"
	"strings"
)

func summaryPrompt(text string, minWords, maxWords int) string {
	return fmt.Sprintf(`تو یک ویراستار حرفه‌ای کتاب هستی. متن زیر بخشی از یک کتاب است.
یک خلاصه روان و جذاب به زبان فارسی بنویس، بین %d تا %d کلمه.
همچنین ژانر کتاب و سه نکته کلیدی آن را مشخص کن.

فقط و فقط یک شیء JSON با این ساختار برگردان، بدون هیچ توضیح اضافه:
{"summary": "...", "key_points": ["...", "...", "..."], "genre": "..."}

متن کتاب:
%s`, minWords, maxWords, text)
}

const visionPrompt = `این تصویر جلد یک کتاب است. اطلاعات کتاب را از روی جلد استخراج کن.

فقط و فقط یک شیء JSON با این ساختار برگردان، بدون هیچ توضیح اضافه:
{"title": "...", "author": "...", "category": "...", "cover_description": "...", "tags": ["...", "..."], "description": "..."}

اگر موردی روی جلد دیده نمی‌شود، مقدار آن را رشته خالی بگذار.`

// generationPrompt builds the anti-repetition prompt for a post kind. The
// style examples teach the channel voice; the avoid snippets are openings of
// recent posts the model must not echo.
func generationPrompt(kind, title, author, bookContext string, styleExamples, avoidSnippets []string) string {
	var b strings.Builder
	b.WriteString("تو نویسنده محتوای یک کانال تلگرامی معرفی کتاب هستی. لحن کانال صمیمی، ادبی و کوتاه است.\n\n")

	if len(styleExamples) > 0 {
		b.WriteString("چند نمونه از پست‌های قبلی کانال برای آشنایی با سبک:\n")
		for i, ex := range styleExamples {
			fmt.Fprintf(&b, "%d) %s\n", i+1, ex)
		}
		b.WriteString("\n")
	}
	if len(avoidSnippets) > 0 {
		b.WriteString("شروع این پست‌ها تکراری شده؛ پست جدید نباید شبیه هیچ‌کدام از این شروع‌ها باشد:\n")
		for _, s := range avoidSnippets {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "کتاب: «%s»", title)
	if author != "" {
		fmt.Fprintf(&b, " اثر %s", author)
	}
	b.WriteString("\n")
	if bookContext != "" {
		fmt.Fprintf(&b, "\nبخشی از متن کتاب برای الهام:\n%s\n", bookContext)
	}

	b.WriteString("\n")
	switch kind {
	case "quote":
		b.WriteString(`یک جمله یا پاراگراف کوتاه و تاثیرگذار از این کتاب انتخاب یا بازنویسی کن.
فقط و فقط یک شیء JSON با این ساختار برگردان:
{"quote": "...", "context": "یک جمله درباره جایگاه این نقل‌قول در کتاب"}`)
	case "description":
		b.WriteString(`یک معرفی کوتاه و جذاب برای این کتاب بنویس (حداکثر ۱۲۰ کلمه).
فقط و فقط یک شیء JSON با این ساختار برگردان:
{"description": "..."}`)
	default: // summary
		b.WriteString(`یک خلاصه کوتاه از این کتاب بنویس (حداکثر ۲۰۰ کلمه) همراه با سه نکته کلیدی.
فقط و فقط یک شیء JSON با این ساختار برگردان:
{"summary": "...", "key_points": ["...", "...", "..."]}`)
	}
	return b.String()
}
