package news

import "strings"

// ExtractText pulls readable paragraph text out of an HTML page. It keeps
// only <p> contents, drops script/style blocks, and collapses whitespace.
// Deliberately lightweight: articles that defeat it are skipped upstream.
func ExtractText(html string) string {
	html = stripBlock(html, "script")
	html = stripBlock(html, "style")

	var paragraphs []string
	rest := html
	for {
		start := indexTag(rest, "<p")
		if start == -1 {
			break
		}
		// Skip past the opening tag's closing '>'.
		open := strings.Index(rest[start:], ">")
		if open == -1 {
			break
		}
		rest = rest[start+open+1:]

		end := strings.Index(strings.ToLower(rest), "</p>")
		if end == -1 {
			break
		}
		text := collapseWhitespace(stripTags(rest[:end]))
		// Short fragments are navigation/boilerplate, not prose.
		if len(text) > 60 {
			paragraphs = append(paragraphs, text)
		}
		rest = rest[end+4:]
	}

	return strings.Join(paragraphs, "\n\n")
}

// indexTag finds tag at a tag boundary ("<p>" or "<p "), case-insensitive.
func indexTag(s, tag string) int {
	lower := strings.ToLower(s)
	from := 0
	for {
		i := strings.Index(lower[from:], tag)
		if i == -1 {
			return -1
		}
		i += from
		next := i + len(tag)
		if next >= len(lower) || lower[next] == '>' || lower[next] == ' ' {
			return i
		}
		from = next
	}
}

func stripBlock(s, tag string) string {
	lower := strings.ToLower(s)
	openTag := "<" + tag
	closeTag := "</" + tag + ">"
	for {
		start := strings.Index(lower, openTag)
		if start == -1 {
			return s
		}
		end := strings.Index(lower[start:], closeTag)
		if end == -1 {
			return s[:start]
		}
		end += start + len(closeTag)
		s = s[:start] + s[end:]
		lower = strings.ToLower(s)
	}
}

func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			sb.WriteRune(' ')
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return decodeEntities(sb.String())
}

func decodeEntities(s string) string {
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"&apos;", "'",
		"&nbsp;", " ",
	)
	return replacer.Replace(s)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
