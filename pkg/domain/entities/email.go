package entities

import "time"

// Email is an unstructured message from a distribution center to a wholesaler.
// Date is the primary key.
type Email struct {
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

// EmailEmbedding is the vector representation of an email used for similarity search
type EmailEmbedding struct {
	Date   time.Time `json:"date"`
	Vector []float64 `json:"vector"`
	Model  string    `json:"model"`
}

// EmailMatch is one result of a similarity search
type EmailMatch struct {
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
	Score   float64   `json:"similarity_score"`
}
