package importer

import "testing"

func block(lines ...string) RawBlock {
	return RawBlock{Lines: lines}
}

func TestProperty(t *testing.T) {
	t.Run("simple value", func(t *testing.T) {
		b := block("netname: EXAMPLE-NET", "descr: Example network")
		if got := b.Property("netname"); got != "EXAMPLE-NET" {
			t.Fatalf("netname = %q, want EXAMPLE-NET", got)
		}
		if got := b.Property("descr"); got != "Example network" {
			t.Fatalf("descr = %q, want Example network", got)
		}
	})

	t.Run("absent value", func(t *testing.T) {
		b := block("netname: EXAMPLE-NET")
		if got := b.Property("descr"); got != "" {
			t.Fatalf("descr = %q, want empty", got)
		}
	})

	t.Run("repeated lines join with one space", func(t *testing.T) {
		b := block("descr: Line one", "descr: Line two", "descr: Line three")
		if got := b.Property("descr"); got != "Line one Line two Line three" {
			t.Fatalf("descr = %q", got)
		}
	})

	t.Run("whitespace is trimmed and collapsed", func(t *testing.T) {
		b := block("netname:   EXAMPLE-NET   ", "descr: too   many\tspaces")
		if got := b.Property("netname"); got != "EXAMPLE-NET" {
			t.Fatalf("netname = %q, want EXAMPLE-NET", got)
		}
		if got := b.Property("descr"); got != "too many spaces" {
			t.Fatalf("descr = %q, want collapsed whitespace", got)
		}
	})

	t.Run("name is case sensitive", func(t *testing.T) {
		b := block("NetName: EXAMPLE-NET")
		if got := b.Property("netname"); got != "" {
			t.Fatalf("netname = %q, want empty", got)
		}
	})

	t.Run("empty block", func(t *testing.T) {
		if got := block().Property("netname"); got != "" {
			t.Fatalf("netname = %q, want empty", got)
		}
	})
}

func TestNetnameFallsBackToOrigin(t *testing.T) {
	b := block("route: 8.8.8.0/24", "origin: AS15169")
	if got := b.Netname(); got != "AS15169" {
		t.Fatalf("Netname = %q, want AS15169", got)
	}

	b = block("inetnum: 10.0.0.0/8", "netname: TEN-NET", "origin: AS1")
	if got := b.Netname(); got != "TEN-NET" {
		t.Fatalf("Netname = %q, want TEN-NET", got)
	}
}

func TestCountryCitySuffix(t *testing.T) {
	b := block("country: MX", "city: Monterrey")
	if got := b.Country(); got != "MX - Monterrey" {
		t.Fatalf("Country = %q, want MX - Monterrey", got)
	}

	b = block("country: NL")
	if got := b.Country(); got != "NL" {
		t.Fatalf("Country = %q, want NL", got)
	}
}

func TestLastModified(t *testing.T) {
	t.Run("prefers last-modified", func(t *testing.T) {
		b := block("last-modified: 2020-07-15T13:10:57Z", "changed: admin@example.com 20190101")
		if got := b.LastModified(); got != "2020-07-15T13:10:57Z" {
			t.Fatalf("LastModified = %q", got)
		}
	})

	t.Run("changed with valid date", func(t *testing.T) {
		b := block("changed: admin@example.com 20230415")
		if got := b.LastModified(); got != "2023-04-15" {
			t.Fatalf("LastModified = %q, want 2023-04-15", got)
		}
	})

	t.Run("changed with revision suffix", func(t *testing.T) {
		b := block("changed: admin@example.com 20230415 03")
		if got := b.LastModified(); got != "2023-04-15" {
			t.Fatalf("LastModified = %q, want 2023-04-15", got)
		}
	})

	t.Run("invalid day is discarded", func(t *testing.T) {
		b := block("changed: admin@example.com 20230431")
		if got := b.LastModified(); got != "" {
			t.Fatalf("LastModified = %q, want empty for day 31 in a 30-day slot", got)
		}
	})

	t.Run("invalid month is discarded", func(t *testing.T) {
		b := block("changed: admin@example.com 20231301")
		if got := b.LastModified(); got != "" {
			t.Fatalf("LastModified = %q, want empty", got)
		}
	})

	t.Run("wrong date length is discarded", func(t *testing.T) {
		b := block("changed: admin@example.com 202304")
		if got := b.LastModified(); got != "" {
			t.Fatalf("LastModified = %q, want empty", got)
		}
	})

	t.Run("email without date pattern is discarded", func(t *testing.T) {
		b := block("changed: admin@example.com sometime")
		if got := b.LastModified(); got != "" {
			t.Fatalf("LastModified = %q, want empty", got)
		}
	})

	t.Run("plain value passes through verbatim", func(t *testing.T) {
		b := block("changed: 2001-09-22")
		if got := b.LastModified(); got != "2001-09-22" {
			t.Fatalf("LastModified = %q, want verbatim value", got)
		}
	})

	t.Run("absent changed stays absent", func(t *testing.T) {
		if got := block("netname: X").LastModified(); got != "" {
			t.Fatalf("LastModified = %q, want empty", got)
		}
	})
}
