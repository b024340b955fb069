package models

import (
	"time"
)

// Query represents a stored SQL snippet with its metadata.
// Table and column names follow the original queryvault_db schema.
type Query struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Title       string    `gorm:"column:titulo;size:255;not null"`
	Description string    `gorm:"column:descripcion;type:text"`
	SQLBody     string    `gorm:"column:sql_codigo;type:text;not null"`
	Author      string    `gorm:"column:autor;size:100"`
	IsFavorite  bool      `gorm:"column:favorito;not null;default:false"`
	ParentID    *uint64   `gorm:"column:padre_id"`
	CreatedAt   time.Time `gorm:"column:fecha_creacion"`
	UpdatedAt   time.Time `gorm:"column:fecha_modificacion"`

	Parent   *Query         `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL"`
	Tags     []Tag          `gorm:"many2many:consulta_etiqueta;joinForeignKey:consulta_id;joinReferences:etiqueta_id;constraint:OnDelete:CASCADE"`
	Versions []QueryVersion `gorm:"foreignKey:QueryID;constraint:OnDelete:CASCADE"`
}

// Tag represents a free-text label shared across queries.
// Names are unique store-wide (trimmed, case-sensitive).
type Tag struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement;column:id"`
	Name string `gorm:"column:nombre;uniqueIndex;size:255;not null"`
}

// QueryVersion is an append-only snapshot of a query's SQL body.
// Rows are never updated or deleted individually.
type QueryVersion struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	QueryID    uint64    `gorm:"column:consulta_id;not null;index"`
	SQLBody    string    `gorm:"column:sql_codigo;type:text;not null"`
	RecordedAt time.Time `gorm:"column:fecha;autoCreateTime"`
}

// QueryTag is an association row in the consulta_etiqueta join table.
// The table itself is created by the Query.Tags many2many migration.
type QueryTag struct {
	QueryID uint64 `gorm:"column:consulta_id;primaryKey"`
	TagID   uint64 `gorm:"column:etiqueta_id;primaryKey"`
}

// TableName overrides the table name for Query
func (Query) TableName() string {
	return "consultas"
}

// TableName overrides the table name for Tag
func (Tag) TableName() string {
	return "etiquetas"
}

// TableName overrides the table name for QueryVersion
func (QueryVersion) TableName() string {
	return "versiones_consulta"
}

// TableName overrides the table name for QueryTag
func (QueryTag) TableName() string {
	return "consulta_etiqueta"
}
