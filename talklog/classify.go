package talklog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Category is the closed classification of a message's content (send_type in the artifacts).
type Category string

const (
	CategoryText         Category = "text"
	CategorySticker      Category = "sticker"
	CategoryPhoto        Category = "photo"
	CategoryVideo        Category = "video"
	CategoryVoiceMessage Category = "voice-message"
	CategoryFile         Category = "file"
	CategoryContact      Category = "contact"
	CategoryGift         Category = "gift"
	CategoryAlbum        Category = "album"
	CategoryLocation     Category = "location"
	CategoryNote         Category = "note"
	CategoryCallStart    Category = "call-start"
	CategoryCallCancel   Category = "call-cancel"
)

// SystemSender is used for notices that carry no sender column (joins, leaves, ...).
const SystemSender = "system"

var allCategories = []Category{
	CategoryText, CategorySticker, CategoryPhoto, CategoryVideo, CategoryVoiceMessage,
	CategoryFile, CategoryContact, CategoryGift, CategoryAlbum, CategoryLocation,
	CategoryNote, CategoryCallStart, CategoryCallCancel,
}

// ParseCategory validates a send_type value read back from an artifact.
func ParseCategory(s string) (Category, error) {
	for _, c := range allCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Export markers (ja locale).
var bracketTags = map[string]Category{
	"[ファイル]":     CategoryFile,
	"[スタンプ]":     CategorySticker,
	"[写真]":       CategoryPhoto,
	"[動画]":       CategoryVideo,
	"[ボイスメッセージ]": CategoryVoiceMessage,
	"[連絡先]":      CategoryContact,
	"[プレゼント]":    CategoryGift,
}

const (
	albumMarker      = "[アルバム] (null)"
	locationPrefix   = "[位置情報]"
	notePrefix       = "[ノート] "
	callCancelMarker = "☎ 通話をキャンセルしました"
)

var (
	callDurationRe = regexp.MustCompile(`^☎ 通話時間 (\d+):(\d+)$`)
	urlRe          = regexp.MustCompile(`(?:https?|ftp)://[-_.!~*'()a-zA-Z0-9;/?:@&=+$,%#]+`)
)

// ClassifiedContent is what Classify derives from a content string alone.
type ClassifiedContent struct {
	Category Category
	Metadata Metadata
	// Length is the content length in characters (runes), whatever the category.
	Length int
}

// SplitSender separates the sender column from the content of a time-block payload.
// Only the first tab delimits; later tabs belong to the content.
func SplitSender(payload string) (sender, content string) {
	name, rest, found := strings.Cut(payload, "\t")
	if !found {
		return SystemSender, payload
	}
	if name == "" {
		name = SystemSender
	}
	return name, rest
}

// Classify assigns a category to message content. The first matching rule wins.
func Classify(content string) ClassifiedContent {
	out := ClassifiedContent{
		Metadata: NoMetadata{},
		Length:   utf8.RuneCountInString(content),
	}

	if cat, ok := bracketTags[content]; ok {
		out.Category = cat
		return out
	}

	switch {
	case content == albumMarker:
		out.Category = CategoryAlbum
	case strings.HasPrefix(content, locationPrefix):
		out.Category = CategoryLocation
	case strings.HasPrefix(content, notePrefix):
		out.Category = CategoryNote
	case callDurationRe.MatchString(content):
		m := callDurationRe.FindStringSubmatch(content)
		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		out.Category = CategoryCallStart
		out.Metadata = CallMetadata{Seconds: minutes*60 + seconds}
	case content == callCancelMarker:
		out.Category = CategoryCallCancel
	default:
		out.Category = CategoryText
		out.Metadata = urlMetadata(content, out.Length)
	}
	return out
}

// urlMetadata counts embedded URLs and the length the content would have if every URL
// were a single character.
func urlMetadata(content string, length int) URLMetadata {
	urls := urlRe.FindAllString(content, -1)
	urlChars := 0
	for _, u := range urls {
		urlChars += utf8.RuneCountInString(u)
	}
	return URLMetadata{
		Count:          len(urls),
		AdjustedLength: length + len(urls) - urlChars,
	}
}
