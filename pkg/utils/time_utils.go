package utils

import (
	"time"
	_ "time/tzdata"
)

// Dominican Republic time (AST, -04:00, no DST)
var doLoc = func() *time.Location {
	if loc, err := time.LoadLocation("America/Santo_Domingo"); err == nil {
		return loc
	}
	return time.FixedZone("AST", -4*3600)
}()

const DefaultTimezone = "America/Santo_Domingo"

func NowUnixSeconds() int64 { return time.Now().Unix() }

// FromUnixSecondsDO converts epoch seconds to local time.
// Returns zero time if t<=0 to let callers decide how to render.
func FromUnixSecondsDO(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(doLoc)
}

func FromUnixPtrDO(t *int64) *time.Time {
	if t == nil || *t <= 0 {
		return nil
	}
	v := FromUnixSecondsDO(*t)
	return &v
}

func FormatRFC3339DO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(doLoc).Format(time.RFC3339)
}

func Int64Ptr(v int64) *int64 { return &v }
