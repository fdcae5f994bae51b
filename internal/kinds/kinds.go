
package kinds

// Kind identifies a post kind on the channel.
type Kind string

const (
	Quote       Kind = "quote"
	Description Kind = "description"
	Summary     Kind = "summary"
	Image       Kind = "image"
	Video       Kind = "video"
	Audio       Kind = "audio"
	Text        Kind = "text"
	File        Kind = "file"
)

// Media transport classes for publishing.
const (
	MediaNone     = ""
	MediaPhoto    = "photo"
	MediaVideo    = "video"
	MediaDocument = "document"
)

type Info struct {
	ID     Kind
	NameFa string
	Emoji  string

	// Media is how a file reference of this kind is sent to the channel.
	Media string

	// HashtagType selects the typed hashtag pool for the post.
	HashtagType string

	// AI marks kinds the generator can synthesize from book text.
	AI bool
}

var All = []Info{
	{ID: Quote, NameFa: "نقل‌قول", Emoji: "💬", Media: MediaNone, HashtagType: "quote", AI: true},
	{ID: Description, NameFa: "معرفی کتاب", Emoji: "📖", Media: MediaNone, HashtagType: "general", AI: true},
	{ID: Summary, NameFa: "خلاصه کتاب", Emoji: "📝", Media: MediaNone, HashtagType: "general", AI: true},
	{ID: Image, NameFa: "تصویر", Emoji: "🖼", Media: MediaPhoto, HashtagType: "general"},
	{ID: Video, NameFa: "ویدیو", Emoji: "🎬", Media: MediaVideo, HashtagType: "general"},
	{ID: Audio, NameFa: "فایل صوتی", Emoji: "🎧", Media: MediaDocument, HashtagType: "general"},
	{ID: Text, NameFa: "متن", Emoji: "✍️", Media: MediaNone, HashtagType: "general"},
	{ID: File, NameFa: "فایل", Emoji: "📎", Media: MediaDocument, HashtagType: "general"},
}

var byID map[Kind]Info

func init() {
	byID = map[Kind]Info{}
	for _, k := range All {
		byID[k.ID] = k
	}
}

func ByID(id string) (Info, bool) {
	k, ok := byID[Kind(id)]
	return k, ok
}

// Label returns the Persian display name for a kind, with a generic fallback
// so unknown rows still render in the footer.
func Label(id string) string {
	if k, ok := byID[Kind(id)]; ok {
		return k.NameFa
	}
	return "محتوا"
}

// HashtagType maps a kind to its typed hashtag pool ("general" for unknowns).
func HashtagType(id string) string {
	if k, ok := byID[Kind(id)]; ok && k.HashtagType != "" {
		return k.HashtagType
	}
	return "general"
}

// MediaClass returns how a stored file reference of this kind should be sent.
func MediaClass(id string) string {
	if k, ok := byID[Kind(id)]; ok {
		return k.Media
	}
	return MediaDocument
}

// Generatable lists the kinds offered on the AI generation menu.
func Generatable() []Info {
	var out []Info
	for _, k := range All {
		if k.AI {
			out = append(out, k)
		}
	}
	return out
}
