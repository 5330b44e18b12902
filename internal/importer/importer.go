package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"netinfo/internal/database"
	"netinfo/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// commitCount bounds how many records a worker writes before committing the
// outstanding batch and logging a progress estimate.
const commitCount = 10000

// FileList names the registry dumps a run looks for, one or two per RIR.
var FileList = []string{
	"afrinic.db.gz",
	"apnic.db.inet6num.gz",
	"apnic.db.inetnum.gz",
	"arin.db.gz",
	"lacnic.db.gz",
	"ripe.db.inetnum.gz",
	"ripe.db.inet6num.gz",
}

type Options struct {
	// Dir is the directory holding the registry dumps.
	Dir string

	// Incremental switches the sink from plain inserts into a recreated
	// table to conflict-aware upserts keyed on (inetnum, source).
	Incremental bool

	// Workers is the pool size per file; zero means one per core.
	Workers int
}

// Run ingests every available registry dump in sequence. Missing dumps are
// skipped: registries are independent, so absence is not fatal.
func Run(opts Options) error {
	overallStart := time.Now()

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Dir == "" {
		opts.Dir = "./databases"
	}

	if opts.Incremental {
		log.Info("Running in incremental mode - will update existing records")
		if err := database.EnsureBlockSchema(); err != nil {
			return fmt.Errorf("importer: ensure schema: %w", err)
		}
	} else {
		log.Info("Running in full refresh mode - dropping and recreating table")
		if err := database.ResetBlockSchema(); err != nil {
			return fmt.Errorf("importer: reset schema: %w", err)
		}
	}

	// Every record of this run shares one import timestamp.
	importDate := time.Now().UTC()

	for _, entry := range FileList {
		path := filepath.Join(opts.Dir, entry)
		if _, err := os.Stat(path); err != nil {
			log.Info("Dump file not found, skipping", "file", path)
			continue
		}
		if err := importFile(path, importDate, opts); err != nil {
			return err
		}
	}

	log.Info("Import finished", "took", time.Since(overallStart).Round(time.Millisecond))
	return nil
}

func importFile(path string, importDate time.Time, opts Options) error {
	log.Info("Parsing database file", "file", path)

	readStart := time.Now()
	blocks, err := ReadBlocks(path)
	if err != nil {
		return err
	}
	log.Info("Dump segmented",
		"blocks", humanize.Comma(int64(len(blocks))),
		"took", time.Since(readStart).Round(time.Millisecond),
	)
	if len(blocks) == 0 {
		return nil
	}

	// The queue holds the whole file, so a worker lost to a store failure
	// can never wedge distribution. Closing the channel is the end-of-work
	// signal for every worker.
	jobs := make(chan RawBlock, len(blocks))
	for _, block := range blocks {
		jobs <- block
	}
	close(jobs)

	parseStart := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			drainBlocks(worker, jobs, len(blocks), importDate, opts)
		}(i)
	}
	wg.Wait()

	log.Info("Block parsing finished", "took", time.Since(parseStart).Round(time.Millisecond))
	return nil
}

// drainBlocks is one pool worker: it normalizes blocks into records and
// writes them through the configured sink, committing every commitCount
// records. A store error is fatal to this worker only; batches committed
// before the failure stay durable.
func drainBlocks(worker int, jobs <-chan RawBlock, totalBlocks int, importDate time.Time, opts Options) {
	var (
		buffer     []domain.Block
		blocksDone int
		batchStart = time.Now()
	)

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		var err error
		if opts.Incremental {
			err = database.UpsertBlocks(buffer)
		} else {
			err = database.InsertBlocks(buffer)
		}
		buffer = buffer[:0]
		return err
	}

	for block := range jobs {
		records, err := buildRecords(block, importDate)
		if err != nil {
			log.Warn("Could not parse inetnum on block, skipping",
				"worker", worker, "block", block.Lines[0], "error", err)
			continue
		}

		buffer = append(buffer, records...)
		blocksDone++

		if len(buffer) >= commitCount {
			committed := len(buffer)
			if err := flush(); err != nil {
				log.Error("Worker lost its store connection, giving up",
					"worker", worker, "error", err)
				return
			}
			percent := min(float64(blocksDone*opts.Workers*100)/float64(totalBlocks), 100)
			log.Debug("Committed batch",
				"worker", worker,
				"records", humanize.Comma(int64(committed)),
				"took", time.Since(batchStart).Round(time.Millisecond),
				"done", fmt.Sprintf("%.1f%%", percent),
			)
			batchStart = time.Now()
		}
	}

	if err := flush(); err != nil {
		log.Error("Failed to commit final batch", "worker", worker, "error", err)
		return
	}
	log.Debug("Worker finished", "worker", worker, "blocks", blocksDone)
}

// buildRecords turns one raw block into its persisted rows, one per
// decomposed CIDR. All rows of a block share the extracted attributes.
func buildRecords(block RawBlock, importDate time.Time) ([]domain.Block, error) {
	cidrs, err := block.CIDRs()
	if err != nil {
		if !errors.Is(err, ErrNoInetnum) {
			err = fmt.Errorf("%w: %w", ErrNoInetnum, err)
		}
		return nil, err
	}

	records := make([]domain.Block, 0, len(cidrs))
	for _, cidr := range cidrs {
		records = append(records, domain.Block{
			Inetnum:      cidr,
			Netname:      block.Netname(),
			Description:  block.Property("descr"),
			Country:      block.Country(),
			MaintainedBy: block.Property("mnt-by"),
			Created:      block.Property("created"),
			LastModified: block.LastModified(),
			Source:       block.Property("cust_source"),
			Status:       block.Property("status"),
			ImportDate:   importDate,
		})
	}
	return records, nil
}
