package database

import "fmt"

func (s *SQLiteStore) RunMigrations() error {
	if err := s.db.AutoMigrate(&propertyRow{}, &copyHistoryRow{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	// Listing scans filter on activity and page by id
	err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_properties_active_id
		ON properties(is_active, id);
	`).Error
	if err != nil {
		return err
	}

	err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_copy_history_url_created
		ON ai_copy_history(property_url, created_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
