package services

import (
	"github.com/queryvault/queryvault/internal/models"
	"gorm.io/gorm"
)

// DeleteQuery removes a query and, transitively, its tag associations and
// version history. Children referencing it through parentId are detached.
// Returns false (not an error) when the id was absent.
func DeleteQuery(db *gorm.DB, id uint64) (bool, error) {
	var deleted bool

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("consulta_id = ?", id).Delete(&models.QueryTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("consulta_id = ?", id).Delete(&models.QueryVersion{}).Error; err != nil {
			return err
		}
		// UpdateColumn: detaching children must not refresh their fecha_modificacion
		if err := tx.Model(&models.Query{}).Where("padre_id = ?", id).
			UpdateColumn("padre_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Query{}, id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, classifyError("deleteQuery", err)
	}

	return deleted, nil
}
