package models

import "time"

// Tokyo is the business timezone. Day boundaries for "today" counters and
// date-only columns are interpreted here.
var Tokyo = loadTokyo()

func loadTokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		// Japan has not observed DST since 1951
		return time.FixedZone("Asia/Tokyo", 9*60*60)
	}
	return loc
}
