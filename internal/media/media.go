package models

import "time"

// Video is the persisted record of an ingested video.
type Video struct {
	ID             string    `bson:"_id" json:"id"`
	Title          string    `bson:"title" json:"title"`
	Description    string    `bson:"description" json:"description"`
	PublicID       string    `bson:"public_id" json:"publicId"`
	OriginalSize   string    `bson:"original_size" json:"originalSize"`
	CompressedSize string    `bson:"compressed_size" json:"compressedSize"`
	Duration       float64   `bson:"duration" json:"duration"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// Fields are the optional form values sent next to the file. They are kept
// verbatim.
type Fields struct {
	Title        string
	Description  string
	OriginalSize string
}

// UploadRequest is one inbound upload.
type UploadRequest struct {
	UserID  string
	Payload []byte
	Fields  Fields
}
