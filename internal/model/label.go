package model

type Label struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
