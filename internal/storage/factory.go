package storage

import "github.com/yourname/habitroom/internal"

// NewRepositories builds the room repository for the configured backend.
// The postgres backend is always wrapped with the file copy so a backend
// outage degrades to local persistence. The concrete handles are returned
// alongside the repository for feed wiring and shutdown.
func NewRepositories(dbType, dsn, roomsFile string, logger internal.Logger) (RoomRepository, *PostgresStorage, *FileStorage, error) {
	local, err := NewFileStorage(roomsFile, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if dbType != "postgres" {
		return local, nil, local, nil
	}
	remote, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		logger.Warnf("postgres unavailable at startup, serving from local copy: %v", err)
		return local, nil, local, nil
	}
	return NewFallbackStorage(remote, local, logger), remote, local, nil
}
