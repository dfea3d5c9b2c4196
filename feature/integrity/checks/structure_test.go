package checks

import (
	"context"
	"testing"

	"crowdmarks/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckStructure(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, "pins")
		assert.ErrorIs(t, err, ErrBucketMissing)
	})

	t.Run("Bucket Check Fails", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(false, assert.AnError)

		_, err := CheckStructure(context.Background(), mockClient, "pins")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("All Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(true, nil)
		ch := make(chan minio.ObjectInfo)
		close(ch)
		mockClient.On("ListObjects", mock.Anything, "pins", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

		missing, err := CheckStructure(context.Background(), mockClient, "pins")
		assert.NoError(t, err)
		assert.Equal(t, RequiredFolders, missing)
	})

	t.Run("All Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(true, nil)

		for _, folder := range RequiredFolders {
			ch := make(chan minio.ObjectInfo, 1)
			ch <- minio.ObjectInfo{Key: folder + "/"}
			close(ch)
			mockClient.On("ListObjects", mock.Anything, "pins", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
				return opts.Prefix == folder+"/"
			})).Return((<-chan minio.ObjectInfo)(ch))
		}

		missing, err := CheckStructure(context.Background(), mockClient, "pins")
		assert.NoError(t, err)
		assert.Len(t, missing, 0)
	})

	t.Run("Listing Cancelled After First Item", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(true, nil)

		var listCtx context.Context
		ch := make(chan minio.ObjectInfo, 2)
		ch <- minio.ObjectInfo{Key: "images/a.jpg"}
		ch <- minio.ObjectInfo{Key: "images/b.jpg"}
		mockClient.On("ListObjects", mock.Anything, "pins", mock.Anything).
			Run(func(args mock.Arguments) { listCtx = args.Get(0).(context.Context) }).
			Return((<-chan minio.ObjectInfo)(ch))

		missing, err := CheckStructure(context.Background(), mockClient, "pins")
		assert.NoError(t, err)
		assert.Empty(t, missing)
		require.NotNil(t, listCtx)
		assert.ErrorIs(t, listCtx.Err(), context.Canceled)
	})
}

func TestFixStructure(t *testing.T) {
	logger := zap.NewNop()
	mockClient := new(mocks.Client)

	mockClient.On("PutObject", mock.Anything, "pins", "images/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStructure(context.Background(), mockClient, "pins", logger, []string{"images"})
	assert.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "PutObject", 1)
}

func TestFixStructure_Error(t *testing.T) {
	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "pins", mock.Anything, mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	err := FixStructure(context.Background(), mockClient, "pins", zap.NewNop(), []string{"images"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestEnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(true, nil)

		assert.NoError(t, EnsureBucket(context.Background(), mockClient, "pins", "", zap.NewNop()))
		mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "pins", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, EnsureBucket(context.Background(), mockClient, "pins", "eu-west-1", zap.NewNop()))
		mockClient.AssertExpectations(t)
	})

	t.Run("Create Fails", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "pins").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "pins", mock.Anything).Return(assert.AnError)

		assert.ErrorIs(t, EnsureBucket(context.Background(), mockClient, "pins", "", zap.NewNop()), assert.AnError)
	})
}
