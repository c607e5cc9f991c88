package storage

import (
	"context"
	"errors"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/fathima-sithara/media-service/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudinary struct {
	got    []byte
	params uploader.UploadParams
	res    *uploader.UploadResult
	err    error
}

func (f *fakeCloudinary) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	b, err := io.ReadAll(file.(io.Reader))
	if err != nil {
		return nil, err
	}
	f.got = b
	return f.res, f.err
}

type result struct {
	asset *ingest.Asset
	err   error
}

func runStream(t *testing.T, u ingest.Uploader, opts ingest.Options, payload string) result {
	t.Helper()
	ch := make(chan result, 1)
	w, err := u.UploadStream(context.Background(), opts, func(a *ingest.Asset, err error) {
		ch <- result{a, err}
	})
	require.NoError(t, err)
	_, _ = io.Copy(w, strings.NewReader(payload))
	require.NoError(t, w.Close())
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
		return result{}
	}
}

func TestCloudinaryVideoUpload(t *testing.T) {
	fake := &fakeCloudinary{res: &uploader.UploadResult{
		PublicID: "video-uploads/abc",
		Bytes:    500000,
		Response: &map[string]interface{}{"duration": 12.5},
	}}
	u := &CloudinaryUploader{api: fake}

	r := runStream(t, u, ingest.OptionsFor(ingest.KindVideo, ingest.Folders{}), "video-bytes")
	require.NoError(t, r.err)
	assert.Equal(t, &ingest.Asset{PublicID: "video-uploads/abc", Bytes: 500000, Duration: 12.5}, r.asset)
	assert.Equal(t, "video-bytes", string(fake.got))
	assert.Equal(t, "video-uploads", fake.params.Folder)
	assert.Equal(t, "video", fake.params.ResourceType)
	assert.Equal(t, "q_auto,f_mp4", fake.params.Transformation)
}

type uploadForm struct {
	fields map[string]string
	file   []byte
}

// cloudinaryServer answers every upload with body and records the form.
func cloudinaryServer(t *testing.T, body map[string]interface{}) (*CloudinaryUploader, chan uploadForm) {
	t.Helper()
	forms := make(chan uploadForm, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form := uploadForm{fields: map[string]string{}}
		for k, v := range r.MultipartForm.Value {
			form.fields[k] = v[0]
		}
		if f, _, err := r.FormFile("file"); err == nil {
			form.file, _ = io.ReadAll(f)
			_ = f.Close()
		}
		forms <- form
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	cld, err := cloudinary.NewFromParams("demo", "key", "secret")
	require.NoError(t, err)
	cld.Upload.Config.API.UploadPrefix = srv.URL
	return &CloudinaryUploader{api: &cld.Upload}, forms
}

func TestCloudinaryVideoUploadOverHTTP(t *testing.T) {
	u, forms := cloudinaryServer(t, map[string]interface{}{
		"public_id": "video-uploads/abc",
		"bytes":     500000,
		"duration":  12.5,
	})

	r := runStream(t, u, ingest.OptionsFor(ingest.KindVideo, ingest.Folders{}), "video-bytes")
	require.NoError(t, r.err)
	assert.Equal(t, &ingest.Asset{PublicID: "video-uploads/abc", Bytes: 500000, Duration: 12.5}, r.asset)

	form := <-forms
	assert.Equal(t, "video-uploads", form.fields["folder"])
	assert.Equal(t, "video", form.fields["resource_type"])
	assert.Equal(t, "q_auto,f_mp4", form.fields["transformation"])
	assert.Equal(t, "video-bytes", string(form.file))
}

func TestCloudinaryImageUploadOverHTTP(t *testing.T) {
	u, forms := cloudinaryServer(t, map[string]interface{}{"public_id": "next-cloudinary-uploader/img", "bytes": 3})

	r := runStream(t, u, ingest.OptionsFor(ingest.KindImage, ingest.Folders{}), "png")
	require.NoError(t, r.err)
	assert.Equal(t, &ingest.Asset{PublicID: "next-cloudinary-uploader/img", Bytes: 3}, r.asset)

	form := <-forms
	assert.Equal(t, "next-cloudinary-uploader", form.fields["folder"])
	assert.NotContains(t, form.fields, "resource_type")
	assert.NotContains(t, form.fields, "transformation")
}

func TestCloudinaryErrorOverHTTP(t *testing.T) {
	u, _ := cloudinaryServer(t, map[string]interface{}{"error": map[string]string{"message": "Invalid image file"}})

	r := runStream(t, u, ingest.Options{Folder: "f"}, "junk")
	assert.Nil(t, r.asset)
	assert.EqualError(t, r.err, "Invalid image file")
}

func TestCloudinaryImageWithoutDuration(t *testing.T) {
	fake := &fakeCloudinary{res: &uploader.UploadResult{PublicID: "img", Bytes: 10}}
	u := &CloudinaryUploader{api: fake}

	r := runStream(t, u, ingest.OptionsFor(ingest.KindImage, ingest.Folders{}), "png")
	require.NoError(t, r.err)
	assert.Equal(t, float64(0), r.asset.Duration)
	assert.Equal(t, "next-cloudinary-uploader", fake.params.Folder)
	assert.Empty(t, fake.params.ResourceType)
	assert.Empty(t, fake.params.Transformation)
}

func TestCloudinaryErrorResponse(t *testing.T) {
	fake := &fakeCloudinary{res: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
	u := &CloudinaryUploader{api: fake}

	r := runStream(t, u, ingest.Options{Folder: "f"}, "junk")
	assert.Nil(t, r.asset)
	assert.EqualError(t, r.err, "Invalid image file")
}

func TestCloudinaryTransportError(t *testing.T) {
	fake := &fakeCloudinary{err: errors.New("connection reset")}
	u := &CloudinaryUploader{api: fake}

	r := runStream(t, u, ingest.Options{Folder: "f"}, "junk")
	assert.Error(t, r.err)
}

type fakeS3 struct {
	key  string
	body []byte
	err  error
}

func (f *fakeS3) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.key = aws.ToString(in.Key)
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Key: in.Key}, nil
}

func TestS3Upload(t *testing.T) {
	fake := &fakeS3{}
	u := &S3Uploader{uploader: fake, bucket: "media"}

	r := runStream(t, u, ingest.OptionsFor(ingest.KindVideo, ingest.Folders{}), "0123456789")
	require.NoError(t, r.err)
	assert.True(t, strings.HasPrefix(r.asset.PublicID, "video-uploads/"))
	assert.Equal(t, fake.key, r.asset.PublicID)
	assert.Equal(t, int64(10), r.asset.Bytes)
	assert.Equal(t, float64(0), r.asset.Duration)
	assert.Equal(t, "0123456789", string(fake.body))
}

func TestS3UploadFailure(t *testing.T) {
	fake := &fakeS3{err: errors.New("AccessDenied")}
	u := &S3Uploader{uploader: fake, bucket: "media"}

	r := runStream(t, u, ingest.Options{Folder: "f"}, "x")
	assert.Nil(t, r.asset)
	assert.EqualError(t, r.err, "AccessDenied")
}
