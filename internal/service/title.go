package service

import (
	"strings"
	"unicode/utf8"
)

const (
	// Content shorter than this (trimmed) is not worth deriving from.
	titleContentMinRunes = 3

	// Budget for the derived part of the title; content is cut back to the
	// last whole word inside it.
	titleContentBudget = 30

	// titleSuffixSep separates the derived text from the provider/model tag.
	titleSuffixSep = " • "
)

// DeriveTitle builds a conversation title from the first message content and
// model metadata. Pure text derivation: idempotent for identical inputs, no
// side effects.
//
// When the trimmed content is longer than 3 runes, whitespace runs are
// collapsed to single spaces and the result is cut to a 30-rune budget at
// the last word boundary; otherwise the fallback is used unchanged. Either
// way the title gets a " • {provider}/{shortModel}" suffix.
func DeriveTitle(fallback, provider, model, content string) string {
	title := fallback

	if utf8.RuneCountInString(strings.TrimSpace(content)) > titleContentMinRunes {
		normalized := strings.Join(strings.Fields(content), " ")
		title = truncateAtWord(normalized, titleContentBudget)
	}

	return title + titleSuffixSep + provider + "/" + ShortModelName(model)
}

// ShortModelName strips the vendor path prefix from a model identifier, then
// the version-family prefix, keeping only the last hyphen segment:
// "anthropic/claude-3.5-sonnet" -> "sonnet".
func ShortModelName(model string) string {
	short := model
	if i := strings.LastIndex(short, "/"); i >= 0 {
		short = short[i+1:]
	}
	if i := strings.LastIndex(short, "-"); i >= 0 {
		short = short[i+1:]
	}
	return short
}

// StripTitleSuffix removes the provider/model tag from a derived title so it
// can serve as the fallback when the title is re-derived.
func StripTitleSuffix(title string) string {
	if i := strings.LastIndex(title, titleSuffixSep); i >= 0 {
		return title[:i]
	}
	return title
}

// truncateAtWord cuts s to at most budget runes, backing up to the last
// space so no word is split. Inputs within budget pass through untouched.
func truncateAtWord(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}

	cut := string(runes[:budget])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}
