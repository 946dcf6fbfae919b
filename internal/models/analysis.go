package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalysisRecord is an image-analysis document in the artifacts collection.
// Image payload fields are stored but never serialized back to clients.
type AnalysisRecord struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"-"`
	ImageName    string                 `bson:"image_name" json:"image_name"`
	AnalysisType string                 `bson:"analysis_type" json:"analysis_type"`
	Descriptions []string               `bson:"descriptions" json:"descriptions"`
	Metadata     map[string]interface{} `bson:"metadata" json:"metadata"`
	ImageURL     string                 `bson:"image_url,omitempty" json:"-"`
	ImageBase64  string                 `bson:"image_base64,omitempty" json:"-"`
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time              `bson:"updated_at" json:"updated_at"`
}
