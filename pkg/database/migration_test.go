package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestGetLatestVersion(t *testing.T) {
	t.Run("ReturnsHighestUpMigration", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000001_init.up.sql",
			"000001_init.down.sql",
			"000002_add_indexes.up.sql",
			"000002_add_indexes.down.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- noop"), 0o644))
		}

		latest, err := getLatestVersion(dir)
		require.NoError(t, err)
		assert.Equal(t, 2, latest)
	})

	t.Run("ErrorsWhenEmpty", func(t *testing.T) {
		_, err := getLatestVersion(t.TempDir())
		assert.Error(t, err)
	})
}

func TestResolveMigrationFolder(t *testing.T) {
	t.Run("KeepsExistingPath", func(t *testing.T) {
		dir := t.TempDir()
		ms := NewMigrationService(testLogger(), &MigrationConfig{MigrationFolderPath: dir})
		assert.Equal(t, dir, ms.resolveMigrationFolder())
	})

	t.Run("PrependsWorkingDirectoryForRelativePath", func(t *testing.T) {
		ms := NewMigrationService(testLogger(), &MigrationConfig{MigrationFolderPath: "does/not/exist"})
		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, wd+"/does/not/exist", ms.resolveMigrationFolder())
	})
}
