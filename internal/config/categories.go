package config

// CategoryWeights orders command categories in help. Keys are the catalog
// keys commands report from Category().
var CategoryWeights = map[string]int{
	"category_music": 0,
	"category_ai":    10,
	"category_info":  20,
}

// CategoryEmoji prefixes category headings in help.
var CategoryEmoji = map[string]string{
	"category_music": "🎵",
	"category_ai":    "🤖",
	"category_info":  "🕯️",
}
