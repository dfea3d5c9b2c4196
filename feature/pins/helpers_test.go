package pins

import (
	"context"

	"crowdmarks/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// mockStore is a testify mock of Store.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, rec reconcile.Record) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

// jpegBytes starts with the JPEG magic number so content sniffing sees an image.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
