// Package ranks holds the leveling arithmetic.
package ranks

// Curve maps accumulated XP to levels. Reaching level n requires
// BaseXP * n * n total XP, so each level costs progressively more.
type Curve struct {
	BaseXP int
}

func NewCurve(baseXP int) Curve {
	if baseXP <= 0 {
		baseXP = 100
	}
	return Curve{BaseXP: baseXP}
}

// Threshold is the total XP required to hold the given level.
func (c Curve) Threshold(level int) int {
	if level <= 0 {
		return 0
	}
	return c.BaseXP * level * level
}

func (c Curve) LevelFor(xp int) int {
	level := 0
	for c.Threshold(level+1) <= xp {
		level++
	}
	return level
}

type Progress struct {
	Level  int
	XP     int
	Into   int
	Needed int
}

// ProgressFor reports how far into the current level the member is and how
// much XP the next level costs from the current one.
func (c Curve) ProgressFor(xp int) Progress {
	level := c.LevelFor(xp)
	floor := c.Threshold(level)
	return Progress{
		Level:  level,
		XP:     xp,
		Into:   xp - floor,
		Needed: c.Threshold(level+1) - floor,
	}
}
