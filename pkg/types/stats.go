package types

// Stats is a read-only snapshot of store health and contents.
type Stats struct {
	TotalIssues   int            `json:"total_issues"`
	ByStatus      map[Status]int `json:"by_status"`
	CurrentIssues int            `json:"current_issues"` // non-Archived, subject to the cap
	DatabaseBytes int64          `json:"database_bytes"`
	PageCount     int64          `json:"page_count"`
	FreePages     int64          `json:"free_pages"`
	SearchIndexed bool           `json:"search_indexed"` // full-text index present
	SearchRows    int            `json:"search_rows"`    // rows mirrored in the index
}
