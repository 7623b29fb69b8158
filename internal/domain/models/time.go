package models

import "time"

// TimeLayout matches the zh-CN locale rendering used by the web client, e.g. 2024/3/7 09:05:01.
const TimeLayout = "2006/1/2 15:04:05"

var location = time.Local

// SetLocation switches the zone used for formatted timestamps.
func SetLocation(loc *time.Location) {
	if loc != nil {
		location = loc
	}
}

func FormatTime(t time.Time) string {
	return t.In(location).Format(TimeLayout)
}
