// Package reproducible helps build artifacts that are byte-for-byte reproducible.
//
// https://reproducible-builds.org/specs/source-date-epoch/
package reproducible

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	nowOnce sync.Once
	now     time.Time
)

// Now returns the time that archive timestamps should be clamped to: SOURCE_DATE_EPOCH if it is
// set to a valid integer, or the wall-clock time of the first call otherwise.  The value is
// computed once per process so that every archive of a run agrees.
func Now() time.Time {
	nowOnce.Do(func() {
		if epoch, ok := SourceDateEpoch(os.Getenv("SOURCE_DATE_EPOCH")); ok {
			now = epoch
		} else {
			now = time.Now()
		}
	})
	return now
}

// SourceDateEpoch parses the value of a SOURCE_DATE_EPOCH variable.
func SourceDateEpoch(str string) (time.Time, bool) {
	str = strings.TrimSpace(str)
	if str == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(str, 10, 64)
	if err != nil || secs < 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}
