// entitlement.go - Defines the access grant and download event models

package models

import "time"

// Entitlement grants one user access to one paid product. The
// (UserID, ProductID) pair is unique.
type Entitlement struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID    string    `json:"userId" gorm:"not null;uniqueIndex:idx_entitlements_user_product" bson:"userId"`
	ProductID string    `json:"productId" gorm:"not null;uniqueIndex:idx_entitlements_user_product" bson:"productId"`
	GrantedAt time.Time `json:"grantedAt" bson:"grantedAt"`
	GrantedBy string    `json:"grantedBy" bson:"grantedBy"`
}

func (Entitlement) TableName() string {
	return "entitlements"
}

// DownloadEvent records one successful file download.
type DownloadEvent struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID       string    `json:"userId" gorm:"index;not null" bson:"userId"`
	ProductID    string    `json:"productId" gorm:"index;not null" bson:"productId"`
	FileIndex    int       `json:"fileIndex" bson:"fileIndex"`
	FileName     string    `json:"fileName" bson:"fileName"`
	DownloadedAt time.Time `json:"downloadedAt" bson:"downloadedAt"`
}

func (DownloadEvent) TableName() string {
	return "downloads"
}
