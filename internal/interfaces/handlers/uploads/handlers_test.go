package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winery-backend/internal/application/gateway"
	"winery-backend/internal/domain"
)

type fakeStore struct {
	lastName, lastType, lastBody string
	err                          error
}

func (f *fakeStore) PutJSON(context.Context, domain.MetadataDocument) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeStore) PutFile(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.lastName, f.lastType, f.lastBody = name, contentType, string(b)
	return "bafyimage", nil
}

func (f *fakeStore) URL(cid string) string { return "https://" + cid + ".ipfs.w3s.link/" }

func setupUploadTest(t *testing.T) (*fiber.App, *fakeStore) {
	store := &fakeStore{}
	h := &Handlers{Gateway: &gateway.Gateway{Store: store}}
	app := fiber.New()
	app.Post("/api/v1/uploads/wine-image", h.UploadWineImage)
	return app, store
}

func multipartBody(t *testing.T, filename, contentType, content string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write([]byte(content))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadWineImage_MissingFile(t *testing.T) {
	app, _ := setupUploadTest(t)
	req := httptest.NewRequest("POST", "/api/v1/uploads/wine-image", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadWineImage_RejectsNonImage(t *testing.T) {
	app, _ := setupUploadTest(t)
	body, ct := multipartBody(t, "notes.pdf", "application/pdf", "%PDF")
	req := httptest.NewRequest("POST", "/api/v1/uploads/wine-image", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadWineImage_Success(t *testing.T) {
	app, store := setupUploadTest(t)
	body, ct := multipartBody(t, "label.png", "image/png", "PNGDATA")
	req := httptest.NewRequest("POST", "/api/v1/uploads/wine-image", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "bafyimage", data["cid"])
	assert.Equal(t, "https://bafyimage.ipfs.w3s.link/", data["url"])
	assert.Equal(t, "label.png", store.lastName)
	assert.Equal(t, "PNGDATA", store.lastBody)
}

func TestUploadWineImage_StorageFailureIs502(t *testing.T) {
	app, store := setupUploadTest(t)
	store.err = errors.New("storage down")
	body, ct := multipartBody(t, "label.png", "image/png", "PNGDATA")
	req := httptest.NewRequest("POST", "/api/v1/uploads/wine-image", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
