package bot

import "image"

// Point is a fixed tap target on the 720x1560 game screen.
type Point struct {
	X, Y int
}

// ShareLayout is the tap sequence for sharing a truck. Confirm1 differs
// between world and alliance chat; the rest is shared.
type ShareLayout struct {
	Escape   Point
	Share    Point
	Confirm1 Point
	Confirm2 Point
}

// WorldShareLayout shares into the world chat.
var WorldShareLayout = ShareLayout{
	Escape:   Point{680, 70},
	Share:    Point{450, 1100},
	Confirm1: Point{300, 450},
	Confirm2: Point{400, 750},
}

// AllianceShareLayout shares into the alliance chat.
var AllianceShareLayout = ShareLayout{
	Escape:   Point{680, 70},
	Share:    Point{450, 1100},
	Confirm1: Point{300, 700},
	Confirm2: Point{400, 750},
}

// ZombieLayout is the tap map for the gold-zombie flow.
type ZombieLayout struct {
	Nav1, Nav2, Nav3 Point // Navigation into the deploy screen
	Squads           [3]Point
	Confirm          Point
	StaminaLarge     Point // 50-stamina item
	StaminaSmall     Point // 10-stamina item
	StaminaClose     Point
}

// DefaultZombieLayout matches the deploy screen of the current game build.
var DefaultZombieLayout = ZombieLayout{
	Nav1:         Point{780, 300},
	Nav2:         Point{200, 1500},
	Nav3:         Point{500, 1200},
	Squads:       [3]Point{{200, 1400}, {400, 1400}, {600, 1400}},
	Confirm:      Point{450, 1200},
	StaminaLarge: Point{700, 1000},
	StaminaSmall: Point{700, 800},
	StaminaClose: Point{800, 200},
}

// TruckTapOffset is added to a matched truck location so the tap lands
// inside the icon instead of on its top-left corner.
var TruckTapOffset = image.Point{X: 5, Y: 5}
