package backup

import "time"

// Folder names the backup folder of the day t falls on. Weekend folders get
// the day name appended so they stand out when browsing the bucket.
func Folder(t time.Time) string {
	name := t.Format(time.DateOnly)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		name += "_" + t.Weekday().String()
	}
	return name
}
