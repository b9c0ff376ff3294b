package backend_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-lending-service/internal/backend"
	"library-lending-service/internal/boltstore"
	"library-lending-service/internal/config"
	"library-lending-service/internal/memstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_Open_Memory(t *testing.T) {
	b, err := backend.Open(context.Background(), config.Config{Backend: config.BackendMemory}, discardLogger())

	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, b.Store)
	assert.Nil(t, b.Firebase)
	assert.NoError(t, b.Close())
}

func Test_Open_Bolt(t *testing.T) {
	cfg := config.Config{Backend: config.BackendBolt, BoltPath: filepath.Join(t.TempDir(), "library.db")}

	b, err := backend.Open(context.Background(), cfg, discardLogger())

	require.NoError(t, err)
	assert.IsType(t, &boltstore.Store{}, b.Store)
	assert.NoError(t, b.Close())
}

func Test_Open_FirestoreWithoutCredentials(t *testing.T) {
	t.Setenv("FIRESTORE_EMULATOR_HOST", "")
	cfg := config.Config{Backend: config.BackendFirestore}

	_, err := backend.Open(context.Background(), cfg, discardLogger())

	assert.Error(t, err)
}

func Test_Open_UnknownBackend(t *testing.T) {
	_, err := backend.Open(context.Background(), config.Config{Backend: "redis"}, discardLogger())

	assert.Error(t, err)
}
