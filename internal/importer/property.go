package importer

import (
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var changedDatePattern = regexp.MustCompile(`^\S+?@\S+ \d+`)

// Property returns the value of a named attribute. Repeated attributes are
// joined with a single space (multi-line descr fields stay one string) and
// internal whitespace runs collapse to one space. The empty string means
// the attribute is absent.
func (b RawBlock) Property(name string) string {
	prefix := name + ":"

	var values []string
	for _, line := range b.Lines {
		rest, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}
		value := strings.TrimSpace(rest)
		if value == "" {
			continue
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return ""
	}
	return strings.Join(strings.Fields(strings.Join(values, " ")), " ")
}

// Netname returns the netname attribute, falling back to the announcing AS
// (origin) for route objects that carry no netname.
func (b RawBlock) Netname() string {
	if netname := b.Property("netname"); netname != "" {
		return netname
	}
	return b.Property("origin")
}

// Country returns the country attribute, suffixed with the city when the
// block carries one (LACNIC).
func (b RawBlock) Country() string {
	country := b.Property("country")
	if city := b.Property("city"); city != "" {
		country = country + " - " + city
	}
	return country
}

// LastModified returns the last-modified attribute, falling back to the
// legacy changed attribute. The changed field historically encodes
// "<email> <YYYYMMDD>[ <rev>]"; a malformed date is discarded with a
// diagnostic rather than failing the record.
func (b RawBlock) LastModified() string {
	if modified := b.Property("last-modified"); modified != "" {
		return modified
	}

	changed := b.Property("changed")
	switch {
	case changed == "":
		return ""
	case changedDatePattern.MatchString(changed):
		date := strings.Fields(changed)[1]
		parsed, err := time.Parse("20060102", date)
		if len(date) != 8 || err != nil {
			log.Debug("ignoring invalid changed date", "date", date)
			return ""
		}
		return parsed.Format("2006-01-02")
	case strings.Contains(changed, "@"):
		log.Debug("ignoring invalid changed date", "value", changed)
		return ""
	default:
		return changed
	}
}
