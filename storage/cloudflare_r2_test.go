package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	put    *s3.PutObjectInput
	body   string
	delKey string
	err    error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.delKey = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	objects := &fakeObjects{}
	u := newUploader(objects, "brackets", "https://cdn.example/archive/")

	res, err := u.Upload(context.Background(), ResultKey("g1", "run-1"), "application/json", strings.NewReader(`{"ok":true}`))
	require.NoError(t, err)

	assert.Equal(t, "brackets", aws.ToString(objects.put.Bucket))
	assert.Equal(t, "results/g1/run-1.json", aws.ToString(objects.put.Key))
	assert.Equal(t, "application/json", aws.ToString(objects.put.ContentType))
	assert.Equal(t, `{"ok":true}`, objects.body)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://cdn.example/archive/results/g1/run-1.json", res.Location)
}

func TestUploadError(t *testing.T) {
	u := newUploader(&fakeObjects{err: errors.New("denied")}, "brackets", "https://cdn.example")

	_, err := u.Upload(context.Background(), "k", "application/json", strings.NewReader("{}"))
	assert.ErrorContains(t, err, "denied")
	assert.ErrorContains(t, u.Delete(context.Background(), "k"), "denied")
}

func TestDelete(t *testing.T) {
	objects := &fakeObjects{}
	u := newUploader(objects, "brackets", "https://cdn.example")

	require.NoError(t, u.Delete(context.Background(), "results/g1/run-1.json"))
	assert.Equal(t, "results/g1/run-1.json", objects.delKey)
}

func TestGetPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example/results/a.json", newUploader(nil, "b", "https://cdn.example").GetPublicURL("/results/a.json"))
	assert.Equal(t, "", newUploader(nil, "b", "").GetPublicURL("results/a.json"))
	assert.Equal(t, "", newUploader(nil, "b", "https://cdn.example").GetPublicURL(""))
}

func TestConfigValidate(t *testing.T) {
	cfg := CloudflareR2UploaderConfig{AccountID: "acc"}
	assert.True(t, cfg.Enabled())
	assert.Error(t, cfg.Validate())

	_, err := NewCloudflareR2Uploader(context.Background(), cfg)
	assert.Error(t, err)

	assert.False(t, CloudflareR2UploaderConfig{}.Enabled())
}
