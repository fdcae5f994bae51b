
package publish

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mask1381/ketabrooz/internal/db"
	"github.com/mask1381/ketabrooz/internal/kinds"
	"github.com/mask1381/ketabrooz/internal/utils"
)

// FooterText renders the configurable footer for a post: optional custom text
// plus an id line built from the admin's format string. Both templates take
// the {id}, {type} and {date} placeholders; the whole id line is dropped when
// show_content_id is off, and {type}/{date} honor their own toggles there.
// The date is Gregorian to match the channel's archival numbering.
func FooterText(ctx context.Context, d *db.DB, contentID int64, kind string, now time.Time) string {
	settings, err := d.AllFooterSettings(ctx)
	if err != nil {
		return ""
	}
	fill := func(s string) string {
		s = strings.ReplaceAll(s, "{id}", strconv.FormatInt(contentID, 10))
		s = strings.ReplaceAll(s, "{type}", kinds.Label(kind))
		return strings.ReplaceAll(s, "{date}", utils.GregorianDate(now))
	}

	var lines []string
	if custom := strings.TrimSpace(settings["custom_text"]); custom != "" {
		lines = append(lines, fill(custom))
	}

	if format := settings["id_format"]; format != "" && settings["show_content_id"] != "0" {
		line := strings.ReplaceAll(format, "{id}", strconv.FormatInt(contentID, 10))
		line = replaceToggled(line, "{type}", kinds.Label(kind), settings["show_type"])
		line = replaceToggled(line, "{date}", utils.GregorianDate(now), settings["show_date"])
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func replaceToggled(s, placeholder, value, toggle string) string {
	if toggle == "0" {
		value = ""
	}
	return strings.ReplaceAll(s, placeholder, value)
}

const (
	typedTagCount   = 5
	generalTagCount = 3
	maxTags         = 8
)

// HashtagLine picks approved tags for a post kind: the typed pool first, then
// general fillers, deduplicated, at most eight.
func HashtagLine(ctx context.Context, d *db.DB, kind string) string {
	tagType := kinds.HashtagType(kind)
	typed, err := d.ApprovedTags(ctx, tagType, typedTagCount)
	if err != nil {
		return ""
	}
	general, err := d.ApprovedTags(ctx, "general", generalTagCount)
	if err != nil {
		general = nil
	}

	seen := map[string]bool{}
	var out []string
	for _, t := range append(typed, general...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, "#"+t)
		if len(out) == maxTags {
			break
		}
	}
	return strings.Join(out, " ")
}
