package models

// License er lisensinformasjonen GitHub gir per repo.
type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SpdxID string `json:"spdx_id"`
}

// RepoMeta er øyeblikksbildet av et repo slik GitHub REST API leverer det.
// Feltene endres aldri etter henting.
type RepoMeta struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	HtmlUrl       string   `json:"html_url"`
	CloneUrl      string   `json:"clone_url"`
	SshUrl        string   `json:"ssh_url"`
	DefaultBranch string   `json:"default_branch"`
	IsFork        bool     `json:"fork"`
	Private       bool     `json:"private"`
	Archived      bool     `json:"archived"`
	Disabled      bool     `json:"disabled"`
	Stars         int64    `json:"stargazers_count"`
	Watchers      int64    `json:"watchers_count"`
	Forks         int64    `json:"forks_count"`
	OpenIssues    int64    `json:"open_issues_count"`
	Size          int64    `json:"size"`
	Language      string   `json:"language"`
	Topics        []string `json:"topics"`
	Visibility    string   `json:"visibility"`
	License       *License `json:"license"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	PushedAt      string   `json:"pushed_at"`
	LanguagesURL  string   `json:"languages_url"`
}

// RepoRecord er metadatadokumentet vi skriver per repo-katalog,
// RepoMeta beriket med grener, tagger og språkfordeling.
type RepoRecord struct {
	RepoMeta
	Branches  []string         `json:"branches"`
	Tags      []string         `json:"tags"`
	Languages map[string]int64 `json:"languages"`
}

// GistFile er fil-metadata for én fil i en gist.
type GistFile struct {
	Filename string `json:"filename"`
	Language string `json:"language"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	RawURL   string `json:"raw_url"`
}

// GistMeta er øyeblikksbildet av en gist.
type GistMeta struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	HtmlUrl     string              `json:"html_url"`
	GitPullURL  string              `json:"git_pull_url"`
	GitPushURL  string              `json:"git_push_url"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
	Comments    int64               `json:"comments"`
	Files       map[string]GistFile `json:"files"`
}

// FolderName gir katalognavnet for gisten: <opprettelsesdato>_<id>.
// CreatedAt er RFC3339, så de ti første tegnene er datoen.
func (g GistMeta) FolderName() string {
	date := g.CreatedAt
	if len(date) > 10 {
		date = date[:10]
	}
	return date + "_" + g.ID
}

// ItemError er en enkeltfeil som ikke stopper kjøringen, bare telles.
type ItemError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// SectionSummary oppsummerer repo- eller gist-delen av en backup.
type SectionSummary struct {
	Found     int         `json:"found"`
	BackedUp  int         `json:"backed_up"`
	Directory string      `json:"directory"`
	Failed    []ItemError `json:"failed,omitempty"`
}

// CompressionResult er statistikken fra zip-steget.
type CompressionResult struct {
	ZipFile                 string  `json:"zip_file"`
	OriginalSizeBytes       int64   `json:"original_size_bytes"`
	CompressedSizeBytes     int64   `json:"compressed_size_bytes"`
	CompressionRatioPercent float64 `json:"compression_ratio_percent"`
	FilesProcessed          int     `json:"files_processed"`
	TotalFiles              int     `json:"total_files"`
	FailedFiles             int     `json:"failed_files"`
}

// BackupSummary er toppnivådokumentet backup_summary.json.
type BackupSummary struct {
	BackupDate      string             `json:"backup_date"`
	Username        string             `json:"username"`
	BackupDirectory string             `json:"backup_directory"`
	LogFile         string             `json:"log_file"`
	Repositories    SectionSummary     `json:"repositories"`
	Gists           SectionSummary     `json:"gists"`
	Compression     *CompressionResult `json:"compression,omitempty"`
}
