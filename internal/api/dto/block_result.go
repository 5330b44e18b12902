package dto

import "netinfo/internal/domain"

type BlockResult struct {
	Inetnum      string `json:"inetnum"`
	Netname      string `json:"netname,omitempty"`
	Description  string `json:"description,omitempty"`
	Country      string `json:"country,omitempty"`
	MaintainedBy string `json:"maintained_by,omitempty"`
	Created      string `json:"created,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Source       string `json:"source,omitempty"`
	Status       string `json:"status,omitempty"`
}

type SearchResponse struct {
	Results []BlockResult `json:"results"`
	Count   int           `json:"count"`
}

type StatsResponse struct {
	TotalBlocks int64            `json:"total_blocks"`
	BySource    map[string]int64 `json:"by_source"`
}

func NewSearchResponse(blocks []domain.Block) SearchResponse {
	results := make([]BlockResult, 0, len(blocks))
	for _, block := range blocks {
		results = append(results, BlockResult{
			Inetnum:      block.Inetnum,
			Netname:      block.Netname,
			Description:  block.Description,
			Country:      block.Country,
			MaintainedBy: block.MaintainedBy,
			Created:      block.Created,
			LastModified: block.LastModified,
			Source:       block.Source,
			Status:       block.Status,
		})
	}
	return SearchResponse{Results: results, Count: len(results)}
}
