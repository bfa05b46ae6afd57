package records

// Column headers the operator's spreadsheet must carry. Matching is exact.
const (
	ColumnImageLink     = "Bildlänk"
	ColumnArticleNumber = "Artikelnummer"
)

// Record is one spreadsheet row reduced to the two fields the pipeline uses.
// An empty ImageLink means the row carries no reference.
type Record struct {
	ArticleNumber string `json:"article_number"`
	ImageLink     string `json:"image_link"`
}
