package markup

import (
	"strings"

	"golang.org/x/net/html"
)

var emoticons = map[string]string{
	"smile": "🙂", "sad": "🙁", "cheeky": "😛", "laugh": "😀", "wink": "😉",
	"thumbs_up": "👍", "thumbs_down": "👎", "information": "ℹ️", "information_source": "ℹ️",
	"tick": "✅", "white_check_mark": "✅", "check_mark_button": "✅", "cross": "❌",
	"warning": "⚠️", "plus": "➕", "minus": "➖", "question": "❓", "light_on": "💡",
	"yellow_star": "⭐", "blue_star": "⭐", "heart": "❤️", "clipboard": "📋", "thought_balloon": "💭",
}

func (w *walker) reference(n *html.Node) (string, bool) {
	switch n.Data {
	case "ac:link":
		return w.acLink(n), false
	case "ri:user":
		return mention(n), false
	case "ac:image":
		return acImage(n), false
	case "ac:emoticon":
		return emoticon(n), false
	case "time":
		return timeText(n), false
	case "ac:task-list":
		return w.taskList(n), true
	case "ac:adf-extension":
		return w.adfExtension(n), true
	}
	return w.inlineChildren(n), false
}

// acLink renders user mentions, page and attachment links, or the link body.
func (w *walker) acLink(n *html.Node) string {
	if users := findAll(n, "ri:user"); len(users) > 0 {
		out := make([]string, 0, len(users))
		for _, u := range users {
			if m := mention(u); m != "" {
				out = append(out, m)
			}
		}
		if len(out) > 0 {
			return strings.Join(out, ", ")
		}
	}

	body := ""
	for _, b := range childElements(n, "ac:link-body", "ac:plain-text-link-body") {
		body += " " + visibleText(b)
	}
	body = collapse(body)

	if page := findFirst(n, "ri:page"); page != nil {
		title := attr(page, "ri:content-title")
		if title == "" {
			title = body
		}
		if space := attr(page, "ri:space-key"); space != "" && title != "" {
			return "[PAGE-REF: " + placeholderSafe(title) + " (Space: " + placeholderSafe(space) + ")]"
		}
		if title == "" {
			return "[PAGE-REF]"
		}
		return "[PAGE-REF: " + placeholderSafe(title) + "]"
	}
	if att := findFirst(n, "ri:attachment"); att != nil {
		if name := attr(att, "ri:filename"); name != "" {
			return "[Attachment: " + placeholderSafe(name) + "]"
		}
	}
	if u := findFirst(n, "ri:url"); u != nil {
		if href := attr(u, "ri:value"); href != "" {
			if body == "" {
				body = href
			}
			return link(body, href)
		}
	}
	if body != "" {
		return body
	}
	return visibleText(n)
}

func mention(u *html.Node) string {
	id := attr(u, "ri:account-id", "ri:username", "ri:userkey", "username")
	if id == "" {
		id = visibleText(u)
	}
	id = strings.ReplaceAll(strings.Join(strings.Fields(id), ""), "@", "")
	id = strings.NewReplacer("[", "", "]", "").Replace(id)
	if id == "" {
		return ""
	}
	return "[~" + id + "]"
}

func acImage(n *html.Node) string {
	alt := attr(n, "ac:alt", "ac:title")
	if caption := findFirst(n, "ac:caption"); caption != nil && alt == "" {
		alt = visibleText(caption)
	}
	if att := findFirst(n, "ri:attachment"); att != nil {
		if name := attr(att, "ri:filename"); name != "" {
			return image(alt, name)
		}
	}
	if u := findFirst(n, "ri:url"); u != nil {
		if src := attr(u, "ri:value"); src != "" {
			return image(alt, src)
		}
	}
	if alt != "" {
		return alt
	}
	return "[Image]"
}

func emoticon(n *html.Node) string {
	key := attr(n, "ac:emoji-shortname", "ac:name")
	key = strings.ReplaceAll(strings.Trim(key, ":"), "-", "_")
	if key == "" {
		return ""
	}
	if e, ok := emoticons[key]; ok {
		return e
	}
	return ":" + key + ":"
}

func timeText(n *html.Node) string {
	if dt := attr(n, "datetime"); dt != "" {
		if d, ok := formatDate(dt); ok {
			return " " + d + " "
		}
	}
	return " " + visibleText(n) + " "
}

// taskList renders checklist items; items with only placeholder content are dropped.
func (w *walker) taskList(n *html.Node) string {
	var lines []string
	for _, task := range findAll(n, "ac:task") {
		body := findFirst(task, "ac:task-body")
		if body == nil {
			continue
		}
		text := collapse(w.blocks(body))
		if text == "" {
			continue
		}
		box := "[ ]"
		if st := findFirst(task, "ac:task-status"); st != nil && strings.EqualFold(visibleText(st), "complete") {
			box = "[x]"
		}
		lines = append(lines, "- "+box+" "+text)
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n\n" + strings.Join(lines, "\n") + "\n\n"
}

func (w *walker) adfExtension(n *html.Node) string {
	text := collapse(w.blocks(n))
	if text == "" {
		return ""
	}
	short, cut := truncate(placeholderSafe(text), 50)
	if cut {
		short += "..."
	}
	return "\n\n[ADF-CONTENT: " + short + "]\n\n"
}
