package types

import (
	"encoding/json"
	"time"
)

// Document is one record of the document store, addressed by collection and ID.
type Document struct {
	Collection string `gorm:"primaryKey"`
	ID         string `gorm:"primaryKey"`
	Data       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Document) TableName() string {
	return "documents"
}

func NewDocument(collection, id string, v interface{}) (*Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Document{Collection: collection, ID: id, Data: string(data)}, nil
}

func (d Document) Decode(v interface{}) error {
	return json.Unmarshal([]byte(d.Data), v)
}
