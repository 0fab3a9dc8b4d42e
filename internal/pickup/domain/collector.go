package domain

// Collector is a field worker who performs pickups in a single town
type Collector struct {
	ID       string `json:"id" firestore:"-" gorm:"primaryKey"`
	Name     string `json:"name" firestore:"name"`
	Town     string `json:"town" firestore:"town" gorm:"index"`
	IsActive bool   `json:"isActive" firestore:"isActive" gorm:"index"`
	FCMToken string `json:"-" firestore:"fcmToken"` // Don't expose token in JSON
}

// TableName specifies the table name for GORM
func (Collector) TableName() string {
	return "collectors"
}

// DisplayName falls back to a placeholder when the collector has no name
func (c *Collector) DisplayName() string {
	if c.Name == "" {
		return UnknownCollectorName
	}
	return c.Name
}

// User is the account that submits pickup requests and lists marketplace items
type User struct {
	ID       string `json:"id" firestore:"-" gorm:"primaryKey"`
	Name     string `json:"name" firestore:"name"`
	FCMToken string `json:"-" firestore:"fcmToken"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
