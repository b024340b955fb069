package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/queryvault/queryvault/internal/models"
	"github.com/queryvault/queryvault/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// QueryResult is the API projection of a stored query, tags joined in.
type QueryResult struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SQLBody     string    `json:"sqlBody"`
	Author      string    `json:"author"`
	IsFavorite  bool      `json:"isFavorite"`
	ParentID    *uint64   `json:"parentId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tags        []string  `json:"tags"`
}

// GetQueryByID retrieves a single query with its tag names.
// Returns (nil, nil) when the id does not exist.
func GetQueryByID(db *gorm.DB, id uint64) (*QueryResult, error) {
	var q models.Query
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Preload("Tags").
		First(&q, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, types.NewPersistenceError("getQueryByID", err)
	}

	result := reduceQuery(q)
	return &result, nil
}

// ListQueries retrieves all queries ordered by creation time descending.
// A non-empty filter restricts the result to rows where the case-insensitive
// substring match succeeds against title, description, SQL body, author, or
// any associated tag name.
func ListQueries(db *gorm.DB, filter string) ([]QueryResult, error) {
	tx := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Model(&models.Query{}).
		Clauses(hints.CommentBefore("select", "queryvault:list")).
		Preload("Tags").
		Order("consultas.fecha_creacion DESC, consultas.id DESC")

	if f := strings.TrimSpace(filter); f != "" {
		pattern := "%" + strings.ToLower(f) + "%"
		tx = tx.Distinct("consultas.*").
			Joins("LEFT JOIN consulta_etiqueta ce ON ce.consulta_id = consultas.id").
			Joins("LEFT JOIN etiquetas e ON e.id = ce.etiqueta_id").
			Where("LOWER(consultas.titulo) LIKE ? OR LOWER(consultas.descripcion) LIKE ? OR LOWER(consultas.sql_codigo) LIKE ? OR LOWER(consultas.autor) LIKE ? OR LOWER(e.nombre) LIKE ?",
				pattern, pattern, pattern, pattern, pattern)
	}

	var rows []models.Query
	if err := tx.Find(&rows).Error; err != nil {
		return nil, types.NewPersistenceError("listQueries", err)
	}

	results := make([]QueryResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, reduceQuery(row))
	}
	return results, nil
}

// reduceQuery converts a model row to the API projection.
func reduceQuery(q models.Query) QueryResult {
	tags := make([]string, 0, len(q.Tags))
	for _, tag := range q.Tags {
		tags = append(tags, tag.Name)
	}
	sort.Strings(tags)

	return QueryResult{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		SQLBody:     q.SQLBody,
		Author:      q.Author,
		IsFavorite:  q.IsFavorite,
		ParentID:    q.ParentID,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		Tags:        tags,
	}
}
