package catalog

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductRouter(t *testing.T) (http.Handler, *fakeImageStore) {
	t.Helper()
	svc, _, images := newTestService(t)
	h := NewHandlers(svc)

	r := chi.NewRouter()
	r.Get("/api/products", h.HandleListProducts())
	r.Get("/api/products/{id}", h.HandleGetProduct())
	r.Post("/api/products", h.HandleCreateProduct())
	r.Put("/api/products/{id}", h.HandleUpdateProduct())
	r.Delete("/api/products/{id}", h.HandleDeleteProduct())
	return r, images
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleListAndGetProducts(t *testing.T) {
	router, _ := newProductRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var products []Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 3)
	assert.Contains(t, rec.Body.String(), `"price":1200`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Wireless Mouse", p.Name)

	for _, path := range []string{"/api/products/99", "/api/products/abc"} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHandleCreateProduct(t *testing.T) {
	router, images := newProductRouter(t)

	body, ct := multipartBody(t, map[string]string{"name": "Webcam", "price": "49.99", "description": "HD"}, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/api/products", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, int64(4), p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("49.99")))
	assert.Equal(t, "/uploads/photo.png", p.ImageURL)
	assert.Len(t, images.saved, 1)
}

func TestHandleCreateProduct_Validation(t *testing.T) {
	router, _ := newProductRouter(t)

	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"missing name", map[string]string{"price": "10"}},
		{"missing price", map[string]string{"name": "X"}},
		{"bad price", map[string]string{"name": "X", "price": "ten"}},
		{"zero price", map[string]string{"name": "X", "price": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.fields, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/products", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleCreateProduct_URLEncoded(t *testing.T) {
	router, _ := newProductRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader("name=Pad&price=12.5"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), PlaceholderImage)
}

func TestHandleUpdateProduct(t *testing.T) {
	router, _ := newProductRouter(t)

	body, ct := multipartBody(t, map[string]string{"price": "30", "description": ""}, nil)
	req := httptest.NewRequest(http.MethodPut, "/api/products/2", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Wireless Mouse", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "", p.Description)

	body, ct = multipartBody(t, map[string]string{"name": "Ghost"}, nil)
	req = httptest.NewRequest(http.MethodPut, "/api/products/99", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDeleteProduct(t *testing.T) {
	router, _ := newProductRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
