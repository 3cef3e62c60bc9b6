//go:build integration

// Package testutil provides testcontainers setup for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// MongoDBContainer wraps a MongoDB testcontainer.
type MongoDBContainer struct {
	Container testcontainers.Container
	URI       string
}

// SetupMongoDB creates and starts a MongoDB testcontainer.
func SetupMongoDB(ctx context.Context) (*MongoDBContainer, error) {
	mongoContainer, err := mongodb.Run(ctx, "mongo:7.0")
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		_ = mongoContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &MongoDBContainer{Container: mongoContainer, URI: uri}, nil
}

// Cleanup terminates the MongoDB container.
func (m *MongoDBContainer) Cleanup(ctx context.Context) error {
	if m.Container != nil {
		if err := m.Container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}

var (
	sharedContainer     *MongoDBContainer
	sharedContainerErr  error
	sharedContainerOnce sync.Once
	sharedContainerMu   sync.RWMutex
)

// SetupTestMainWithMongoDB sets up a shared MongoDB container for a package's
// integration tests and tears it down after m.Run(). Sharing one container
// across the package keeps test time dominated by the tests, not by container
// startup.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	sharedContainerOnce.Do(func() {
		sharedContainerMu.Lock()
		defer sharedContainerMu.Unlock()
		sharedContainer, sharedContainerErr = SetupMongoDB(ctx)
	})
	if sharedContainerErr != nil {
		panic(sharedContainerErr)
	}

	code := m.Run()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()
	if sharedContainer != nil {
		if err := sharedContainer.Cleanup(ctx); err != nil {
			_, _ = os.Stderr.WriteString("Warning: failed to cleanup shared MongoDB container: " + err.Error() + "\n")
		}
	}

	return code
}

// GetSharedContainerURI returns the URI of the shared MongoDB container.
// Panics if the container is not initialized.
func GetSharedContainerURI() string {
	sharedContainerMu.RLock()
	defer sharedContainerMu.RUnlock()

	if sharedContainer == nil {
		panic("shared MongoDB container not initialized - call SetupTestMainWithMongoDB first")
	}
	return sharedContainer.URI
}

// SanitizeDBName turns a test name into a valid, unique MongoDB database name.
func SanitizeDBName(testName string) string {
	sanitized := make([]rune, 0, len(testName))
	for _, r := range testName {
		if r == '/' || r == '\\' || r == ' ' {
			sanitized = append(sanitized, '_')
		} else {
			sanitized = append(sanitized, r)
		}
	}
	s := string(sanitized)
	if len(s) > 50 {
		s = s[:50]
	}
	return fmt.Sprintf("%s_%d", s, time.Now().UnixNano()%1000000)
}
