package models

type ProblemStats struct {
	Total        int64            `json:"total"`
	Pending      int64            `json:"pending"`
	Approved     int64            `json:"approved"`
	Rejected     int64            `json:"rejected"`
	Featured     int64            `json:"featured"`
	ByTrack      map[string]int64 `json:"byTrack"`
	ByDifficulty map[string]int64 `json:"byDifficulty"`
}

type OrganizationStats struct {
	Total      int64            `json:"total"`
	Verified   int64            `json:"verified"`
	Unverified int64            `json:"unverified"`
	ByIndustry map[string]int64 `json:"byIndustry"`
}

type PublicStats struct {
	TotalProblems      int64            `json:"totalProblems"`
	TotalOrganizations int64            `json:"totalOrganizations"`
	TotalCategories    int64            `json:"totalCategories"`
	ByTrack            map[string]int64 `json:"byTrack"`
}
