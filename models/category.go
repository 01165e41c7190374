package models

// Category groups articles. Deleting a category keeps its articles.
type Category struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug     string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Articles []Article `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}
