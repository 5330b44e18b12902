package importer

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"

	"go4.org/netipx"
)

// ErrNoInetnum signals that a block carries no recognizable address range.
// Callers skip the block with a warning; it is never fatal to the run.
var ErrNoInetnum = errors.New("no inetnum found in block")

const ipv4Octets = `(?:\d{1,3}\.){3}\d{1,3}`

// The registries encode the address range in at least seven distinct forms.
// Patterns are tried in this fixed order; the first match wins.
var (
	reRangeV4    = regexp.MustCompile(`^inetnum:\s*(` + ipv4Octets + `)\s*-\s*(` + ipv4Octets + `)`)
	reCIDRV4     = regexp.MustCompile(`^inetnum:\s*(` + ipv4Octets + `/\d+)`)
	reCIDRV4Shr3 = regexp.MustCompile(`^inetnum:\s*((?:\d{1,3}\.){2}\d{1,3})/(\d+)`)
	reCIDRV4Shr2 = regexp.MustCompile(`^inetnum:\s*(\d{1,3}\.\d{1,3})/(\d+)`)
	reCIDRV6     = regexp.MustCompile(`^inet6num:\s*([0-9a-fA-F:/]{1,43})`)
	reRouteV4    = regexp.MustCompile(`^route:\s*(` + ipv4Octets + `/\d{1,2})`)
	reRouteV6    = regexp.MustCompile(`^route6:\s*([0-9a-fA-F:/]{1,43})`)
)

// CIDRs extracts the address range of a block as one or more CIDR prefixes.
// An inclusive IPv4 range decomposes into the minimal set of aligned,
// non-overlapping prefixes covering it exactly; the LACNIC shorthand forms
// are completed with zero octets; everything already in CIDR form passes
// through unchanged.
func (b RawBlock) CIDRs() ([]string, error) {
	if m := b.match(reRangeV4); m != nil {
		return rangeToCIDRs(m[1], m[2])
	}
	if m := b.match(reCIDRV4); m != nil {
		return []string{m[1]}, nil
	}
	if m := b.match(reCIDRV4Shr3); m != nil {
		return []string{m[1] + ".0/" + m[2]}, nil
	}
	if m := b.match(reCIDRV4Shr2); m != nil {
		return []string{m[1] + ".0.0/" + m[2]}, nil
	}
	if m := b.match(reCIDRV6); m != nil {
		return []string{m[1]}, nil
	}
	if m := b.match(reRouteV4); m != nil {
		return []string{m[1]}, nil
	}
	if m := b.match(reRouteV6); m != nil {
		return []string{m[1]}, nil
	}
	return nil, ErrNoInetnum
}

func (b RawBlock) match(re *regexp.Regexp) []string {
	for _, line := range b.Lines {
		if m := re.FindStringSubmatch(line); m != nil {
			return m
		}
	}
	return nil
}

// rangeToCIDRs covers [start, end] with the minimal CIDR set: at each step
// the largest power-of-two block that starts at the current address and does
// not overshoot the end is emitted.
func rangeToCIDRs(start, end string) ([]string, error) {
	first, err := netip.ParseAddr(start)
	if err != nil {
		return nil, fmt.Errorf("range start %q: %w", start, err)
	}
	last, err := netip.ParseAddr(end)
	if err != nil {
		return nil, fmt.Errorf("range end %q: %w", end, err)
	}

	ipRange := netipx.IPRangeFrom(first, last)
	if !ipRange.IsValid() {
		return nil, fmt.Errorf("invalid range %s - %s", start, end)
	}

	prefixes := ipRange.Prefixes()
	cidrs := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		cidrs = append(cidrs, prefix.String())
	}
	return cidrs, nil
}
