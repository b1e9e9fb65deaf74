package domain

import "strings"

// posLabels maps English part-of-speech names (dictionary API and Kaikki
// abbreviations) to Vietnamese labels.
var posLabels = map[string]string{
	"noun":         "Danh từ",
	"name":         "Danh từ",
	"verb":         "Động từ",
	"adjective":    "Tính từ",
	"adj":          "Tính từ",
	"adverb":       "Trạng từ",
	"adv":          "Trạng từ",
	"pronoun":      "Đại từ",
	"preposition":  "Giới từ",
	"prep":         "Giới từ",
	"conjunction":  "Liên từ",
	"interjection": "Thán từ",
	"determiner":   "Từ hạn định",
}

// LocalizePOS returns the Vietnamese label for pos, or "" if there is none.
func LocalizePOS(pos string) string {
	return posLabels[strings.ToLower(strings.TrimSpace(pos))]
}
