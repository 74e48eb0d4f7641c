package types

type ReportResult struct {
	Success     bool   `json:"success"`
	HTMLContent string `json:"htmlContent"`
	FileName    string `json:"fileName"`
	Message     string `json:"message"`
}

type UploadResult struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}
