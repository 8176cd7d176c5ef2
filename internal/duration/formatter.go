// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package duration

import (
	"strconv"
	"strings"
	"time"
)

// precision is the number of units kept by Format
const precision = 2

var units = []struct {
	name  string
	value time.Duration
}{
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
	{"us", time.Microsecond},
	{"ns", time.Nanosecond},
}

// Format returns a short human-readable string for a run duration,
// keeping its two most significant units.
//
// Examples:
//   - 90 * time.Second => "1m 30s"
//   - 2*time.Hour + 15*time.Minute + 3*time.Second => "2h 15m"
//   - 1234567 * time.Microsecond => "1s 234ms"
func Format(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	parts := make([]string, 0, precision)
	for _, unit := range units {
		if len(parts) == precision {
			break
		}
		if d < unit.value {
			// a zero unit ends the output once a unit was written
			if len(parts) > 0 {
				break
			}
			continue
		}
		count := d / unit.value
		parts = append(parts, strconv.FormatInt(int64(count), 10)+unit.name)
		d -= count * unit.value
	}
	return strings.Join(parts, " ")
}
