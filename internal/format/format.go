// Package format derives human-facing traffic and day summaries from a raw
// status snapshot. Pure computation, no I/O.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Unlimited marks an absent limit or expiry.
const Unlimited = "unlimited"

const (
	kb = 1024.0
	mb = kb * 1024
	gb = mb * 1024

	dayMillis = 24 * 60 * 60 * 1000.0
)

// BytesToHuman renders a byte count with the largest unit it reaches,
// scaled by powers of 1024. A nil count means unlimited; negative counts
// clamp to a zero-byte display.
func BytesToHuman(bytes *int64) string {
	if bytes == nil {
		return Unlimited
	}
	b := *bytes
	if b < 0 {
		return "0 B"
	}
	switch {
	case float64(b) >= gb:
		return fmt.Sprintf("%.2f GB", float64(b)/gb)
	case float64(b) >= mb:
		return fmt.Sprintf("%.2f MB", float64(b)/mb)
	case float64(b) >= kb:
		return fmt.Sprintf("%.0f KB", float64(b)/kb)
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// Traffic is the humanized traffic accounting of a snapshot.
type Traffic struct {
	Total  string
	Remain string
	Used   string
}

// TrafficSummary derives total/remaining/used displays. An absent total
// means an unlimited plan: total and remaining are unlimited and only usage
// is shown. Remaining never goes negative; over-quota clamps to zero.
func TrafficSummary(totalBytes, usedBytes *int64) Traffic {
	if totalBytes == nil {
		used := int64(0)
		if usedBytes != nil {
			used = *usedBytes
		}
		return Traffic{
			Total:  Unlimited,
			Remain: Unlimited,
			Used:   BytesToHuman(&used),
		}
	}

	used := int64(0)
	if usedBytes != nil {
		used = *usedBytes
	}
	remain := *totalBytes - used
	if remain < 0 {
		remain = 0
	}
	return Traffic{
		Total:  BytesToHuman(totalBytes),
		Remain: BytesToHuman(&remain),
		Used:   BytesToHuman(&used),
	}
}

// Days is the day accounting of a subscription window.
type Days struct {
	Total  string
	Remain string
}

// DaysSummary derives total and remaining day counts from an expiry in epoch
// seconds. firstLoginMillis is the recorded first login; when nil the
// current time stands in, collapsing the total to the remaining window.
// Both counts are ceilings over an exact 86,400,000 ms day and clamp at
// zero; no calendar or timezone adjustment is applied.
func DaysSummary(expireSeconds, firstLoginMillis *int64, now time.Time) Days {
	if expireSeconds == nil {
		return Days{Total: Unlimited, Remain: Unlimited}
	}

	nowMs := now.UnixMilli()
	expMs := *expireSeconds * 1000
	first := nowMs
	if firstLoginMillis != nil {
		first = *firstLoginMillis
	}

	total := clampDays(expMs - first)
	remain := clampDays(expMs - nowMs)
	return Days{
		Total:  strconv.FormatInt(total, 10),
		Remain: strconv.FormatInt(remain, 10),
	}
}

func clampDays(spanMillis int64) int64 {
	d := math.Ceil(float64(spanMillis) / dayMillis)
	if d < 0 {
		return 0
	}
	return int64(d)
}
