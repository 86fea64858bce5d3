package models

// Player представляє учасника гри, відомого боту.
// Створюється при першому контакті і ніколи не видаляється ігровим ядром.
type Player struct {
	// ID is the Telegram user ID stored as a string. It is the durable
	// identity key for the player.
	ID string `gorm:"primaryKey" json:"id"`
	// Name is the display name taken from Telegram. It is refreshed on
	// every contact, so a renamed user keeps their record.
	Name string `gorm:"type:text" json:"name"`
}
