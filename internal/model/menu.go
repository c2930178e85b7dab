package model

// Menu is a global catalog entry grouping buttons (actions) of one screen.
type Menu struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Name     string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ActionID string   `gorm:"column:action_id;type:varchar(255);uniqueIndex;not null" json:"actionId"`
	Buttons  []Button `gorm:"foreignKey:MenuID" json:"buttons"`
}

// Button is one grantable action under a menu.
// Names are not unique at the storage level: updates only check the owning menu.
type Button struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(255);not null;index" json:"name"`
	ActionID string `gorm:"column:action_id;type:varchar(255);not null;index" json:"actionId"`
	MenuID   uint   `gorm:"not null;index" json:"menuId"`
}
