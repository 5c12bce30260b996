package services

import (
	"html"
)

// Telegram HTML parse mode helpers. Text is escaped before wrapping.

func FormatBold(text string) string {
	return "<b>" + html.EscapeString(text) + "</b>"
}

func FormatItalic(text string) string {
	return "<i>" + html.EscapeString(text) + "</i>"
}

func FormatCode(text string) string {
	return "<code>" + html.EscapeString(text) + "</code>"
}
