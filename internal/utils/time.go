
package utils

import (
	"time"

	_ "time/tzdata"

	"github.com/go-universal/jalaali"
)

// TehranLoc returns the Tehran time zone location.
// Using the jalaali helper keeps behavior consistent even on minimal systems.
func TehranLoc() *time.Location {
	return jalaali.TehranTz()
}

func NowTehran() time.Time {
	return time.Now().In(TehranLoc())
}

// JalaliDateTime returns a string like "1404/10/09 - 16:40" (in Tehran time).
func JalaliDateTime(t time.Time) string {
	j := jalaali.New(t.In(TehranLoc()))
	return j.Format("2006/01/02 - 15:04")
}

// JalaliDate returns a string like "1404/10/09" (in Tehran time).
func JalaliDate(t time.Time) string {
	j := jalaali.New(t.In(TehranLoc()))
	return j.Format("2006/01/02")
}

// GregorianDate formats a date for the post footer, e.g. "2025/03/21".
func GregorianDate(t time.Time) string {
	return t.In(TehranLoc()).Format("2006/01/02")
}
