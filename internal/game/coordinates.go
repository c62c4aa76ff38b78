package game

import "image"

// Board hexes the bot places units on, in placement order.
var BoardSlots = []image.Point{
	{707, 651}, {839, 651}, {966, 651},
	{903, 571}, {962, 494},
	{1091, 651}, {1022, 571}, {1082, 494},
	{1222, 651}, {1147, 571}, {1198, 494},
}

var BenchSlots = []image.Point{
	{425, 777}, {542, 777}, {658, 777}, {778, 777}, {892, 777},
	{1010, 777}, {1128, 777}, {1244, 777}, {1359, 777},
}

// ItemSlots are the item bench positions, first item first.
var ItemSlots = []image.Point{
	{273, 753}, {348, 737}, {289, 692}, {356, 676}, {307, 631},
	{323, 586}, {407, 679}, {379, 632}, {396, 582}, {457, 628},
}

// Shop card centers, left to right.
var ShopSlots = []image.Point{
	{575, 992}, {775, 992}, {975, 992}, {1175, 992}, {1375, 992},
}

// DraftPath walks the little legend around the carousel on free champion rounds.
var DraftPath = []image.Point{{946, 315}, {700, 450}, {950, 675}, {1200, 460}}

// Orbs drop around the arena, the legend visits these corners to pick them up.
var ItemCheckpoints = []image.Point{{500, 650}, {1400, 650}, {1400, 300}, {500, 300}}

// BenchSafePoint is an empty spot to drop the cursor on after moving units.
var BenchSafePoint = image.Pt(430, 625)

var (
	WalkArea = image.Rect(500, 300, 1200, 650)
	// Units dragged into this strip are sold.
	SellArea = image.Rect(800, 980, 1300, 981)
)

var (
	GoldTemplateRegion = image.Rect(780, 850, 970, 920)
	GoldTextRegion     = image.Rect(867, 881, 924, 909)
	RoundTextRegion    = image.Rect(765, 10, 835, 34)
	// Champion names printed on the shop cards.
	ShopNameRegions = []image.Rectangle{
		image.Rect(480, 1042, 640, 1066),
		image.Rect(680, 1042, 840, 1066),
		image.Rect(880, 1042, 1040, 1066),
		image.Rect(1080, 1042, 1240, 1066),
		image.Rect(1280, 1042, 1440, 1066),
	}
	ShopRegion = image.Rect(475, 930, 1485, 1080)
	// Panel shown after right clicking a unit, its traits are listed below the name.
	UnitInfoRegion = image.Rect(1460, 160, 1900, 620)
	UnitNameRegion = image.Rect(1560, 175, 1800, 205)
)

// AugmentCenter is the middle of the offered augment cards.
var AugmentCenter = image.Pt(960, 540)

const GoldTemplatePrecision = 0.9

// Scale maps a point from BaseResolution to a window of the given size.
func Scale(p image.Point, size image.Point) image.Point {
	if size == BaseResolution || size.X <= 0 || size.Y <= 0 {
		return p
	}

	return image.Pt(p.X*size.X/BaseResolution.X, p.Y*size.Y/BaseResolution.Y)
}

func ScaleRect(r image.Rectangle, size image.Point) image.Rectangle {
	return image.Rectangle{Min: Scale(r.Min, size), Max: Scale(r.Max, size)}
}
