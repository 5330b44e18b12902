package importer

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ripeSample = `% This is the RIPE Database query service.
% The objects are in RPSL format.

inetnum:        193.0.0.0 - 193.0.7.255
netname:        RIPE-NCC
remarks:        this line must vanish
descr:          RIPE Network Coordination Centre
country:        NL

person:         Some Person
address:        Somewhere

inet6num:       2001:db8::/32
netname:        DOCUMENTATION

# trailing comment
route:          8.8.8.0/24
origin:         AS15169
`

func writeDump(t *testing.T, dir, name, content string, compress bool) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create dump: %v", err)
	}
	defer f.Close()

	if compress {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write([]byte(content)); err != nil {
			t.Fatalf("write gzip dump: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("close gzip dump: %v", err)
		}
		return path
	}

	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func TestReadBlocks(t *testing.T) {
	path := writeDump(t, t.TempDir(), "ripe.db.inetnum", ripeSample, false)

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks returned error: %v", err)
	}

	if len(blocks) != 3 {
		t.Fatalf("ReadBlocks returned %d blocks, want 3 (person object must be dropped)", len(blocks))
	}

	first := blocks[0]
	if !strings.HasPrefix(first.Lines[0], "inetnum:") {
		t.Fatalf("first block starts with %q, want inetnum line", first.Lines[0])
	}
	for _, line := range first.Lines {
		if strings.HasPrefix(line, "remarks:") {
			t.Fatalf("remarks line survived segmentation: %q", line)
		}
	}
	if got := first.Lines[len(first.Lines)-1]; got != "cust_source: ripe" {
		t.Fatalf("last line is %q, want synthetic cust_source line", got)
	}

	if got := blocks[2].Property("cust_source"); got != "ripe" {
		t.Fatalf("route block cust_source = %q, want ripe", got)
	}
}

func TestReadBlocksGzip(t *testing.T) {
	path := writeDump(t, t.TempDir(), "apnic.db.inetnum.gz", ripeSample, true)

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks returned error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("ReadBlocks returned %d blocks, want 3", len(blocks))
	}
	if got := blocks[0].Property("cust_source"); got != "apnic" {
		t.Fatalf("cust_source = %q, want apnic", got)
	}
}

func TestReadBlocksUnknownSource(t *testing.T) {
	path := writeDump(t, t.TempDir(), "mystery.db", "inetnum: 10.0.0.0 - 10.0.0.255\nnetname: X\n\n", false)

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks returned error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("ReadBlocks returned %d blocks, want 1", len(blocks))
	}
	if got := blocks[0].Property("cust_source"); got != SourceUnknown {
		t.Fatalf("cust_source = %q, want %q", got, SourceUnknown)
	}
}

func TestReadBlocksLatin1(t *testing.T) {
	// 0xE4 0xF6 0xFC is "äöü" in Latin-1 and invalid UTF-8.
	content := "inetnum: 10.0.0.0 - 10.0.0.255\ndescr: Stra\xdfe mit \xe4\xf6\xfc\n\n"
	path := writeDump(t, t.TempDir(), "ripe.db", content, false)

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks returned error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("ReadBlocks returned %d blocks, want 1", len(blocks))
	}

	descr := blocks[0].Property("descr")
	if !strings.Contains(descr, "äöü") {
		t.Fatalf("descr = %q, want Latin-1 bytes decoded to äöü", descr)
	}
}

func TestReadBlocksVeryLongLine(t *testing.T) {
	// ARIN descr lines can run to megabytes; the run must not abort on them.
	longValue := strings.Repeat("x", 2<<20)
	content := "inetnum: 10.0.0.0 - 10.0.0.255\ndescr: " + longValue + "\nnetname: LONG-NET\n\n"
	path := writeDump(t, t.TempDir(), "arin.db", content, false)

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks returned error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("ReadBlocks returned %d blocks, want 1", len(blocks))
	}
	if got := blocks[0].Property("descr"); len(got) != len(longValue) {
		t.Fatalf("descr length = %d, want %d", len(got), len(longValue))
	}
	if got := blocks[0].Property("netname"); got != "LONG-NET" {
		t.Fatalf("netname = %q, want LONG-NET", got)
	}
}

func TestReadBlocksNoTrailingBlankLine(t *testing.T) {
	path := writeDump(t, t.TempDir(), "arin.db", "route: 8.8.8.0/24\norigin: AS15169", false)

	blocks, err := ReadBlocks(path)
	if err != nil {
		t.Fatalf("ReadBlocks returned error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("ReadBlocks returned %d blocks, want 1", len(blocks))
	}
}
