package notify

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect — разметка сообщения (parse_mode в Telegram).
type Dialect int

const (
	HTML Dialect = iota + 1
	MarkdownV2
)

func (d Dialect) ParseMode() string {
	switch d {
	case HTML:
		return "HTML"
	case MarkdownV2:
		return "MarkdownV2"
	}
	return ""
}

func (d Dialect) String() string { return d.ParseMode() }

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html":
		return HTML, nil
	case "markdownv2", "markdown_v2", "markdown":
		return MarkdownV2, nil
	}
	return 0, fmt.Errorf("unknown markup dialect %q", s)
}

var (
	markdownSpecial = regexp.MustCompile("[_*\\[\\]()~`>#+\\-=|{}.!]")
	htmlEscaper     = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Escape экранирует пользовательский текст.
func (d Dialect) Escape(s string) string {
	switch d {
	case MarkdownV2:
		return markdownSpecial.ReplaceAllString(s, `\$0`)
	case HTML:
		return htmlEscaper.Replace(s)
	}
	return s
}

func (d Dialect) Bold(s string) string {
	if d == HTML {
		return "<b>" + d.Escape(s) + "</b>"
	}
	return "*" + d.Escape(s) + "*"
}

func (d Dialect) Mono(s string) string {
	if d == HTML {
		return "<code>" + d.Escape(s) + "</code>"
	}
	return "`" + d.Escape(s) + "`"
}

// Link — text экранируется, url вставляется как есть.
func (d Dialect) Link(text, url string) string {
	if d == HTML {
		return `<a href="` + url + `">` + d.Escape(text) + "</a>"
	}
	return "[" + d.Escape(text) + "](" + url + ")"
}
