package main

// Rarity levels for cosmetic charms
const (
	RarityCommon    = 0
	RarityRare      = 1
	RarityEpic      = 2
	RarityLegendary = 3
)

// CharmType distinguishes cosmetic categories
const (
	CharmSkin  = "skin"  // runner tint in the overhead view
	CharmTrail = "trail" // footprint trail left in corridors
)

// CharmItem represents a purchasable cosmetic charm
type CharmItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`    // "skin" or "trail"
	Rarity  int    `json:"rarity"`  // 0=common, 1=rare, 2=epic, 3=legendary
	Price   int    `json:"price"`   // in credits
	Color1  string `json:"color1"`  // primary color (hex)
	Color2  string `json:"color2"`  // secondary color (hex)
	Preview string `json:"preview"` // description for UI
}

// CharmCatalog is the full list of purchasable charms
var CharmCatalog = []CharmItem{
	// Runner skins - Common (50-100 credits)
	{ID: "skin_ember", Name: "Ember", Type: CharmSkin, Rarity: RarityCommon, Price: 50, Color1: "#ff5533", Color2: "#aa2200", Preview: "Smoldering orange glow"},
	{ID: "skin_moss", Name: "Moss", Type: CharmSkin, Rarity: RarityCommon, Price: 50, Color1: "#44aa44", Color2: "#1a5a1a", Preview: "Old-wall green"},
	{ID: "skin_slate", Name: "Slate", Type: CharmSkin, Rarity: RarityCommon, Price: 50, Color1: "#7788aa", Color2: "#334455", Preview: "Cold stone grey-blue"},
	{ID: "skin_sand", Name: "Sand", Type: CharmSkin, Rarity: RarityCommon, Price: 75, Color1: "#ddbb77", Color2: "#aa8844", Preview: "Sun-baked corridor dust"},

	// Runner skins - Rare (150-250 credits)
	{ID: "skin_lantern", Name: "Lantern", Type: CharmSkin, Rarity: RarityRare, Price: 150, Color1: "#ffcc44", Color2: "#cc8800", Preview: "Warm lamplight aura"},
	{ID: "skin_frost", Name: "Frost", Type: CharmSkin, Rarity: RarityRare, Price: 150, Color1: "#aaddff", Color2: "#5599cc", Preview: "Rimed crystal coating"},
	{ID: "skin_ivy", Name: "Ivy", Type: CharmSkin, Rarity: RarityRare, Price: 200, Color1: "#66cc33", Color2: "#226600", Preview: "Creeping vine pattern"},

	// Runner skins - Epic (400-600 credits)
	{ID: "skin_wisp", Name: "Wisp", Type: CharmSkin, Rarity: RarityEpic, Price: 400, Color1: "#ccddff", Color2: "#8899dd", Preview: "Half-seen pale shimmer"},
	{ID: "skin_furnace", Name: "Furnace", Type: CharmSkin, Rarity: RarityEpic, Price: 500, Color1: "#ff4400", Color2: "#ffaa00", Preview: "Roaring forge glow"},

	// Runner skins - Legendary (1000+ credits)
	{ID: "skin_midnight", Name: "Midnight", Type: CharmSkin, Rarity: RarityLegendary, Price: 1000, Color1: "#111122", Color2: "#443388", Preview: "Drinks the torchlight"},

	// Trail charms - Common (50-100 credits)
	{ID: "trail_chalk", Name: "Chalk Trail", Type: CharmTrail, Rarity: RarityCommon, Price: 75, Color1: "#eeeeee", Color2: "#bbbbbb", Preview: "Dusty white footprints"},
	{ID: "trail_ember", Name: "Ember Trail", Type: CharmTrail, Rarity: RarityCommon, Price: 75, Color1: "#ff6633", Color2: "#ffbb44", Preview: "Fading sparks behind you"},

	// Trail charms - Rare (150-250 credits)
	{ID: "trail_glow", Name: "Glowworm Trail", Type: CharmTrail, Rarity: RarityRare, Price: 200, Color1: "#66ffaa", Color2: "#22cc77", Preview: "Soft green afterglow"},
	{ID: "trail_rune", Name: "Rune Trail", Type: CharmTrail, Rarity: RarityRare, Price: 200, Color1: "#aa66ff", Color2: "#6622cc", Preview: "Briefly lit floor runes"},

	// Trail charms - Epic (400-600 credits)
	{ID: "trail_prism", Name: "Prism Trail", Type: CharmTrail, Rarity: RarityEpic, Price: 500, Color1: "#ff4488", Color2: "#4488ff", Preview: "Shifts hue with every step"},

	// Trail charms - Legendary (1000+ credits)
	{ID: "trail_hollow", Name: "Hollow Trail", Type: CharmTrail, Rarity: RarityLegendary, Price: 1000, Color1: "#221133", Color2: "#000000", Preview: "Footsteps of pure dark"},
}

// CharmCatalogMap provides O(1) lookup by charm ID
var CharmCatalogMap map[string]CharmItem

func init() {
	CharmCatalogMap = make(map[string]CharmItem, len(CharmCatalog))
	for _, item := range CharmCatalog {
		CharmCatalogMap[item.ID] = item
	}
}

// CreditsPerRun returns the base credits earned for a race
func CreditsPerRun(coins, captures int, won bool) int {
	credits := 30 + coins*5 - captures*3
	if credits < 10 {
		credits = 10
	}
	if won {
		credits += 25
	}
	return credits
}
