package importer

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/charmap"
)

// RawBlock is one WHOIS object: its kept lines plus a synthetic trailing
// "cust_source" line carrying the registry tag. Blocks are ephemeral; a
// worker consumes one and discards it.
type RawBlock struct {
	Lines []string
}

var objectPrefixes = []string{"inetnum:", "inet6num:", "route:", "route6:"}

func keepBlock(firstLine string) bool {
	for _, prefix := range objectPrefixes {
		if strings.HasPrefix(firstLine, prefix) {
			return true
		}
	}
	return false
}

func discardLine(line string) bool {
	return strings.HasPrefix(line, "%") ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "remarks:")
}

// ReadBlocks streams a dump file (plain or gzipped) and groups its lines
// into address-object blocks. Comment and remarks lines are dropped even
// inside kept blocks; objects other than inetnum/inet6num/route/route6 are
// discarded entirely. Every kept block is tagged with the registry derived
// from the filename.
func ReadBlocks(path string) ([]RawBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open dump: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("importer: gunzip %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	source := SourceForFile(filepath.Base(path))
	return scanBlocks(reader, source)
}

func scanBlocks(r io.Reader, source string) ([]RawBlock, error) {
	// WHOIS dumps are not uniformly UTF-8. Latin-1 is total over all byte
	// values, so decoding can never fail and extraction stays byte-safe.
	decoded := charmap.ISO8859_1.NewDecoder().Reader(r)

	// ReadString instead of a Scanner: ARIN emits descr lines of arbitrary
	// length, and a Scanner line limit would abort the whole file.
	reader := bufio.NewReaderSize(decoded, 64*1024)

	var (
		blocks  []RawBlock
		current []string
	)

	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("importer: scan dump: %w", readErr)
		}

		if raw != "" {
			line := strings.TrimRight(raw, "\r\n")
			switch {
			case discardLine(line):
			case strings.TrimSpace(line) != "":
				current = append(current, line)
			// Blank line terminates the candidate block.
			case len(current) > 0 && keepBlock(current[0]):
				current = append(current, "cust_source: "+source)
				blocks = append(blocks, RawBlock{Lines: current})
				if len(blocks)%1000 == 0 {
					log.Debug("parsed another 1000 blocks", "total", len(blocks))
				}
				current = nil
			default:
				current = current[:0]
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	// Dumps normally end with a blank line; tolerate a missing one.
	if len(current) > 0 && keepBlock(current[0]) {
		current = append(current, "cust_source: "+source)
		blocks = append(blocks, RawBlock{Lines: current})
	}

	return blocks, nil
}
