package extract

import (
	"regexp"
	"strconv"
	"time"
)

var (
	dateDotYYYY   = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	dateSlashYYYY = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	dateISO       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	dateDotYY     = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{2})\b`)
)

// ExtractDates detects dd.mm.yyyy, dd/mm/yyyy, yyyy-mm-dd and dd.mm.yy
// dates in text, rejecting calendar-impossible dates and normalizing
// all results to UTC midnight (spec §4.2).
func ExtractDates(sectionID, text string) []Date {
	var results []Date
	work := []byte(text)

	blank := func(start, end int) {
		for i := start; i < end; i++ {
			if work[i] != '\n' {
				work[i] = ' '
			}
		}
	}

	// dmy scans pattern (day, month, year) capture order.
	dmy := func(pattern *regexp.Regexp, twoDigitYear bool) {
		for _, m := range pattern.FindAllStringSubmatchIndex(string(work), -1) {
			day, errD := strconv.Atoi(text[m[2]:m[3]])
			month, errM := strconv.Atoi(text[m[4]:m[5]])
			year, errY := strconv.Atoi(text[m[6]:m[7]])
			if errD != nil || errM != nil || errY != nil {
				continue
			}
			if twoDigitYear {
				nowYY := time.Now().UTC().Year() % 100
				if year <= nowYY {
					year += 2000
				} else {
					year += 1900
				}
			}
			if !validDate(year, month, day) {
				blank(m[0], m[1])
				continue
			}
			results = append(results, Date{
				Raw:       text[m[0]:m[1]],
				Value:     time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
				SectionID: sectionID,
			})
			blank(m[0], m[1])
		}
	}

	// ymd scans pattern (year, month, day) capture order.
	ymd := func(pattern *regexp.Regexp) {
		for _, m := range pattern.FindAllStringSubmatchIndex(string(work), -1) {
			year, errY := strconv.Atoi(text[m[2]:m[3]])
			month, errM := strconv.Atoi(text[m[4]:m[5]])
			day, errD := strconv.Atoi(text[m[6]:m[7]])
			if errD != nil || errM != nil || errY != nil {
				continue
			}
			if !validDate(year, month, day) {
				blank(m[0], m[1])
				continue
			}
			results = append(results, Date{
				Raw:       text[m[0]:m[1]],
				Value:     time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
				SectionID: sectionID,
			})
			blank(m[0], m[1])
		}
	}

	ymd(dateISO)
	dmy(dateDotYYYY, false)
	dmy(dateSlashYYYY, false)
	dmy(dateDotYY, true)

	return results
}

// validDate rejects calendar-impossible dates such as 31.02.2024.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
