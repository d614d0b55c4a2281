package utils

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// TemplateFuncs are the helpers every page template can call.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"markdown": RenderMarkdown,
		"excerpt": func(body string, n int) string {
			return Excerpt(string(RenderMarkdown(body)), n)
		},
		"stars":       Stars,
		"initials":    Initials,
		"avatarColor": AvatarColor,
		"timeAgo": func(t time.Time) string {
			return TimeAgo(t, time.Now())
		},
		"isoTime": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
		"join": func(items []string) string {
			return strings.Join(items, ", ")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"avg": func(f *float64) string {
			if f == nil {
				return "–"
			}
			return fmt.Sprintf("%.1f", *f)
		},
	}
}
