// Package words provides the secret-word bank for the code-deduction game.
// Each team receives a pack of four words; the pack is chosen deterministically
// from an integer seed so the same seed always yields the same slots.
package words

// Slot is one of a team's four secret word positions (index 1..4).
type Slot struct {
	Index       int    `json:"index"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

var wordBank = [][4][2]string{
	{
		{"苹果", "Apple"},
		{"海洋", "Ocean"},
		{"钟表", "Clock"},
		{"火山", "Volcano"},
	},
	{
		{"森林", "Forest"},
		{"飞机", "Airplane"},
		{"丝绸", "Silk"},
		{"电池", "Battery"},
	},
	{
		{"银河", "Galaxy"},
		{"画笔", "Brush"},
		{"地铁", "Subway"},
		{"茶壶", "Teapot"},
	},
	{
		{"冰川", "Glacier"},
		{"剧院", "Theater"},
		{"沙漏", "Hourglass"},
		{"指南针", "Compass"},
	},
	{
		{"雷达", "Radar"},
		{"花园", "Garden"},
		{"隧道", "Tunnel"},
		{"乐谱", "Score"},
	},
	{
		{"雪山", "Snow Mountain"},
		{"邮票", "Stamp"},
		{"镜子", "Mirror"},
		{"齿轮", "Gear"},
	},
}

// Pick returns the four secret word slots for the given seed. Picks are
// deterministic: the same seed always returns the same pack in the same order.
func Pick(seed int) []Slot {
	if seed < 0 {
		seed = -seed
	}
	pack := wordBank[seed%len(wordBank)]
	slots := make([]Slot, 0, len(pack))
	for i, w := range pack {
		slots = append(slots, Slot{
			Index:       i + 1,
			Word:        w[0],
			Translation: w[1],
		})
	}
	return slots
}
