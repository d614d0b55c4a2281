package utils

import (
	"hash/fnv"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var avatarColors = []string{
	"#e11d48", "#db2777", "#9333ea", "#4f46e5", "#0284c7",
	"#0d9488", "#16a34a", "#ca8a04", "#ea580c", "#57534e",
}

// Initials returns up to two upper-case initials for an avatar placeholder.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// AvatarColor picks a stable background colour for id.
func AvatarColor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return avatarColors[h.Sum32()%uint32(len(avatarColors))]
}

// Stars renders a rating as filled and empty stars, e.g. 3 -> "★★★☆☆".
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// TimeAgo formats t relative to now in coarse English units.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day") + " ago"
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/(24*30)), "month") + " ago"
	}
	return plural(int(d.Hours()/(24*365)), "year") + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
