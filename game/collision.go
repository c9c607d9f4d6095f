package game

// HitsWall 格子是否越出 w x h 网格
func HitsWall(c Cell, w, h int) bool {
	return c.Col < 0 || c.Col >= w || c.Row < 0 || c.Row >= h
}

// HitsBody 格子是否与任一身体段重合
func HitsBody(c Cell, body []Cell) bool {
	for _, s := range body {
		if s == c {
			return true
		}
	}
	return false
}
