package normalize

import (
	"sort"
	"strings"
)

// mascotSuffixes is the end-anchored strip vocabulary. Entries are matched
// case-insensitively against the tail of a name and only when preceded by a
// space, so a bare mascot name ("Phoenix") is never emptied out.
//
// Multi-word entries must win over their last word ("golden eagles" before
// "eagles"), which is why the list is sorted longest-first at init.
var mascotSuffixes = []string{
	// Power-conference staples.
	"wildcats", "bulldogs", "tigers", "eagles", "panthers", "bears",
	"cougars", "hawks", "huskies", "lions", "cardinals", "knights",
	"rebels", "aggies", "wolfpack", "wolverines", "spartans", "hurricanes",
	"blue devils", "tar heels", "crimson tide", "fighting irish",
	"hoosiers", "boilermakers", "buckeyes", "badgers", "hawkeyes",
	"golden gophers", "cornhuskers", "terrapins", "nittany lions",
	"mountaineers", "razorbacks", "gamecocks", "volunteers", "commodores",
	"gators", "seminoles", "cavaliers", "hokies", "yellow jackets",
	"orange", "red raiders", "longhorns", "jayhawks", "sooners", "cowboys",
	"cyclones", "horned frogs", "demon deacons", "fighting illini",
	"illini", "scarlet knights", "golden bears",
	// Big East and other eastern programs.
	"bearcats", "musketeers", "bluejays", "golden eagles", "rams",
	"braves", "49ers", "owls", "peacocks", "friars", "hoyas", "pirates",
	"terriers", "red storm", "crusaders", "billikens", "colonials",
	"dukes", "patriots", "minutemen", "explorers", "bonnies", "jaspers",
	"quakers",
	// West coast and mountain programs.
	"gaels", "dons", "toreros", "waves", "broncos", "aztecs", "lobos",
	"utes", "buffaloes", "trojans", "bruins", "ducks", "beavers",
	"sun devils", "lumberjacks", "anteaters", "gauchos", "mustangs",
	"highlanders", "titans", "matadors", "roadrunners", "miners",
	"vandals", "zags", "pilots", "wolf pack", "rainbow warriors",
	"thunderbirds", "bengals",
	// Mid-major and southern programs.
	"mean green", "thundering herd", "golden flashes", "rockets",
	"redhawks", "bobcats", "chippewas", "zips", "penguins", "bulls",
	"flames", "phoenix", "leathernecks", "salukis", "redbirds",
	"sycamores", "shockers", "kangaroos", "roos", "antelopes", "falcons",
	"rattlers", "hornets", "blazers", "delta devils", "texans",
	"midshipmen", "golden hurricane", "catamounts", "governors",
	"skyhawks", "buccaneers", "mocs", "paladins", "keydets", "tribe",
	"seahawks", "retrievers", "great danes", "seawolves", "blue hens",
	"purple eagles", "red flash", "mountain hawks", "leopards",
	"gentlemen", "ragin cajuns", "ragin' cajuns", "warhawks",
	"trailblazers", "islanders", "mavericks", "vaqueros", "privateers",
	"norse", "mastodons", "jackrabbits", "coyotes", "bison", "flyers",
}

func init() {
	sort.Slice(mascotSuffixes, func(i, j int) bool {
		if len(mascotSuffixes[i]) != len(mascotSuffixes[j]) {
			return len(mascotSuffixes[i]) > len(mascotSuffixes[j])
		}
		return mascotSuffixes[i] < mascotSuffixes[j]
	})
}

// StripMascot removes a single known mascot suffix from the end of a name.
// The match is case-insensitive, requires a preceding space, and prefers the
// longest entry, so "Marquette Golden Eagles" loses "golden eagles" rather
// than "eagles". Names without a recognized suffix come back unchanged.
func StripMascot(name string) string {
	lower := strings.ToLower(name)
	for _, m := range mascotSuffixes {
		if strings.HasSuffix(lower, " "+m) {
			return strings.TrimSpace(name[:len(name)-len(m)-1])
		}
	}
	return name
}

// HasMascotSuffix reports whether StripMascot would change the name.
func HasMascotSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range mascotSuffixes {
		if strings.HasSuffix(lower, " "+m) {
			return true
		}
	}
	return false
}
