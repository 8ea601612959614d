package main

// Achievement definitions
type AchievementDef struct {
	ID          string
	Name        string
	Description string
}

var Achievements = []AchievementDef{
	{"first_coin", "Shiny", "Pick up your first coin"},
	{"collector", "Collector", "Gather 100 coins total"},
	{"hoarder", "Hoarder", "Gather 1000 coins total"},
	{"goldrush", "Gold Rush", "Gather 10 coins in a single race"},
	{"untouched", "Untouched", "Finish a race without being captured"},
	{"sprinter", "Sprinter", "Finish a race in under 60 seconds"},
	{"victor", "Victor", "Win 10 races"},
	{"veteran", "Veteran", "Reach level 10"},
	{"elite", "Elite", "Reach level 25"},
	{"legend", "Legend", "Reach level 50"},
	{"wanderer", "Wanderer", "Play for 1 hour total"},
}

// CheckAchievements checks if any new achievements should be unlocked for
// a player after a race. Returns the newly unlocked definitions.
func CheckAchievements(db *DB, playerID int64, raceCoins, raceCaptures int, finished bool, finishT float64, won bool) []AchievementDef {
	if db == nil {
		return nil
	}

	stats, err := db.GetStats(playerID)
	if err != nil || stats == nil {
		return nil
	}

	existing, err := db.GetAchievements(playerID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(existing))
	for _, a := range existing {
		has[a] = true
	}

	var unlocked []AchievementDef

	check := func(id string) bool {
		if has[id] {
			return false
		}
		switch id {
		case "first_coin":
			return stats.Coins >= 1
		case "collector":
			return stats.Coins >= 100
		case "hoarder":
			return stats.Coins >= 1000
		case "goldrush":
			return raceCoins >= 10
		case "untouched":
			return finished && raceCaptures == 0
		case "sprinter":
			return finished && finishT > 0 && finishT < 60
		case "victor":
			return stats.Wins >= 10
		case "veteran":
			return stats.Level >= 10
		case "elite":
			return stats.Level >= 25
		case "legend":
			return stats.Level >= 50
		case "wanderer":
			return stats.Playtime >= 3600
		}
		return false
	}

	for _, def := range Achievements {
		if check(def.ID) {
			if newlyUnlocked, err := db.UnlockAchievement(playerID, def.ID); err == nil && newlyUnlocked {
				unlocked = append(unlocked, def)
			}
		}
	}

	return unlocked
}
