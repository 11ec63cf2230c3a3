package dto

type CardInfo struct {
	ID    string
	Title string
	Kind  string
}

type ReadInput struct {
	CardID string
	Page   int
}

type ReadOutput struct {
	CardID    string
	Title     string
	Kind      string
	Page      int
	TotalPage int
	Content   string
}
