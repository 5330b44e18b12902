package domain

import (
	"fmt"
	"time"
)

// Block is one normalized address block extracted from an RIR WHOIS dump.
// The natural identity for re-ingestion is (Inetnum, Source); a single dump
// object can decompose into several rows when its range is not CIDR-aligned.
type Block struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// Inetnum holds the CIDR prefix (e.g. 192.0.2.0/24).
	Inetnum string `gorm:"type:cidr;not null;index" json:"inetnum"`

	Netname      string `gorm:"index" json:"netname"`
	Description  string `json:"description"`
	Country      string `gorm:"index" json:"country"`
	MaintainedBy string `gorm:"index" json:"maintained_by"`
	Created      string `json:"created"`
	LastModified string `json:"last_modified"`

	// Source is the owning registry: afrinic, apnic, arin, lacnic, ripe
	// or the literal "unknown" when the dump filename matched nothing.
	Source string `gorm:"index" json:"source"`
	Status string `gorm:"index" json:"status"`

	// ImportDate is shared by every row written during one importer run.
	ImportDate time.Time `json:"import_date"`
}

func (b Block) String() string {
	return fmt.Sprintf(
		"inetnum: %s, netname: %s, desc: %s, status: %s, country: %s, maintained: %s, source: %s",
		b.Inetnum, b.Netname, b.Description, b.Status, b.Country, b.MaintainedBy, b.Source,
	)
}
