package types

import "path/filepath"

// DatabaseFileName is the name of the store file inside DataDir.
const DatabaseFileName = "snags.db"

// Config holds the directories the storage engine works in.
type Config struct {
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	BackupDir string `json:"backup_dir" yaml:"backup_dir"`
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}

// DatabasePath returns the path of the store file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DatabaseFileName)
}

// ResolvedBackupDir returns the backup directory, defaulting to a
// "backups" directory next to the store file.
func (c Config) ResolvedBackupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(c.DataDir, "backups")
}
