package catalog

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
)

// maxFormBytes leaves room for the text fields next to the image.
const maxFormBytes = MaxImageBytes + 1<<20

// Handlers exposes the product endpoints.
type Handlers struct {
	service *Service
}

// NewHandlers creates new Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// createProductForm mirrors the multipart fields of a create request.
type createProductForm struct {
	Name        string `json:"name" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Description string `json:"description"`
}

// HandleListProducts godoc
// @Summary List products
// @Tags Products
// @Produce json
// @Success 200 {array} catalog.Product
// @Router /products [get]
func (h *Handlers) HandleListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := h.service.ListProducts(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, products)
	}
}

// HandleGetProduct godoc
// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} catalog.Product
// @Failure 404 {object} apperror.ErrorResponse
// @Router /products/{id} [get]
func (h *Handlers) HandleGetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		p, err := h.service.GetProduct(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, p)
	}
}

// HandleCreateProduct godoc
// @Summary Create a product
// @Description Multipart form with name, price, optional description and image. Admin only.
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param price formData number true "Price"
// @Param description formData string false "Description"
// @Param image formData file false "Product image"
// @Success 201 {object} catalog.Product
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /products [post]
func (h *Handlers) HandleCreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(w, r); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		form := createProductForm{
			Name:        strings.TrimSpace(r.PostFormValue("name")),
			Price:       strings.TrimSpace(r.PostFormValue("price")),
			Description: r.PostFormValue("description"),
		}
		if err := auth.ValidateStruct(form); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("Product name and price are required.", err))
			return
		}
		price, err := parsePrice(form.Price)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		img, err := readImage(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		p, err := h.service.CreateProduct(r.Context(), NewProduct{
			Name:        form.Name,
			Price:       price,
			Description: form.Description,
		}, img)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, p)
	}
}

// HandleUpdateProduct godoc
// @Summary Update a product
// @Description Partial multipart update; a new image replaces the old one. Admin only.
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Product ID"
// @Param name formData string false "Name"
// @Param price formData number false "Price"
// @Param description formData string false "Description"
// @Param image formData file false "Product image"
// @Success 200 {object} catalog.Product
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *Handlers) HandleUpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := parseForm(w, r); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var upd ProductUpdate
		if name := strings.TrimSpace(r.PostFormValue("name")); name != "" {
			upd.Name = &name
		}
		if raw := strings.TrimSpace(r.PostFormValue("price")); raw != "" {
			price, err := parsePrice(raw)
			if err != nil {
				auth.WriteError(w, r, err)
				return
			}
			upd.Price = &price
		}
		// An explicitly empty description clears it.
		if values, ok := r.PostForm["description"]; ok && len(values) > 0 {
			desc := values[0]
			upd.Description = &desc
		}

		img, err := readImage(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		p, err := h.service.UpdateProduct(r.Context(), id, upd, img)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, p)
	}
}

// HandleDeleteProduct godoc
// @Summary Delete a product
// @Tags Products
// @Param id path int true "Product ID"
// @Success 204 "Deleted"
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *Handlers) HandleDeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		if err := h.service.DeleteProduct(r.Context(), id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func productID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperror.NewNotFoundError("Product not found.", err)
	}
	return id, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperror.NewValidationError(fmt.Sprintf("Invalid price %q.", raw), err)
	}
	if err := validatePrice(price); err != nil {
		return decimal.Decimal{}, err
	}
	return price, nil
}

// parseForm accepts multipart and urlencoded bodies.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	err := r.ParseMultipartForm(maxFormBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.NewValidationError("Upload is too large.", err)
		}
		return apperror.NewBadRequestError("Invalid form body.", err)
	}
	return nil
}

// readImage returns the optional "image" file, or nil when none was sent.
func readImage(r *http.Request) (*ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperror.NewBadRequestError("Invalid image upload.", err)
	}
	defer file.Close()

	return readUpload(file, header)
}

func readUpload(file multipart.File, header *multipart.FileHeader) (*ImageUpload, error) {
	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid image upload.", err)
	}
	if len(data) > MaxImageBytes {
		return nil, apperror.NewValidationError("Image must be at most 5 MiB.", nil)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &ImageUpload{Filename: header.Filename, Data: data}, nil
}
