package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"homelist/auth"
	"homelist/property"
)

const (
	maxUploadFiles = 5
	maxImageBytes  = 5 << 20 // 5MB per file
)

type propertyRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    property.Location `json:"location"`
	Price       float64           `json:"price"`
	Type        string            `json:"type"`
	Status      property.Status   `json:"status"`
	Bedrooms    int               `json:"bedrooms"`
	Bathrooms   int               `json:"bathrooms"`
	Area        float64           `json:"area"`
	Features    []string          `json:"features"`
	Images      []string          `json:"images"`
}

type propertyResponse struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    property.Location `json:"location"`
	Price       float64           `json:"price"`
	Type        string            `json:"type"`
	Status      property.Status   `json:"status"`
	Bedrooms    int               `json:"bedrooms"`
	Bathrooms   int               `json:"bathrooms"`
	Area        float64           `json:"area"`
	Features    []string          `json:"features"`
	Images      []string          `json:"images"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	UserName    *string           `json:"user_name,omitempty"`
	UserEmail   *string           `json:"user_email,omitempty"`
	UserPhone   *string           `json:"user_phone,omitempty"`
}

func toPropertyResponse(p property.Property) propertyResponse {
	return propertyResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Location:    p.Location,
		Price:       p.Price,
		Type:        p.Type,
		Status:      p.Status,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Area:        p.Area,
		Features:    p.Features,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		UserName:    p.OwnerName,
		UserEmail:   p.OwnerEmail,
		UserPhone:   p.OwnerPhone,
	}
}

func toPropertyResponses(props []property.Property) []propertyResponse {
	out := make([]propertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyResponse(p))
	}
	return out
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.properties.GetAll(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyResponses(props))
}

func (s *Server) handleActiveProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.properties.FindAllActive(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyResponses(props))
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	prop, err := s.properties.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyResponse(prop))
}

func (s *Server) handleUserProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.properties.FindByUserID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyResponses(props))
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req propertyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	prop, err := s.properties.Create(r.Context(), property.CreateParams{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
		Type:        req.Type,
		Status:      req.Status,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Features:    req.Features,
		Images:      req.Images,
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPropertyResponse(prop))
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	prop, ok := s.mutableProperty(w, r)
	if !ok {
		return
	}

	var req propertyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.properties.Update(r.Context(), prop.ID, property.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
		Type:        req.Type,
		Status:      req.Status,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Features:    req.Features,
		Images:      req.Images,
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyResponse(updated))
}

func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request) {
	prop, ok := s.mutableProperty(w, r)
	if !ok {
		return
	}

	// Count and MIME limits are enforced before anything touches disk or
	// the database.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadFiles*maxImageBytes+1<<20)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "No images supplied")
		return
	}
	if len(files) > maxUploadFiles {
		respondError(w, http.StatusBadRequest, "Too many files; at most 5 images per upload")
		return
	}
	for _, header := range files {
		if header.Size > maxImageBytes {
			respondError(w, http.StatusBadRequest, "Image exceeds the 5MB limit")
			return
		}
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			respondError(w, http.StatusBadRequest, "Not an image! Please upload only images.")
			return
		}
	}

	paths := make([]string, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		path, err := s.store.Save(file, header.Filename)
		file.Close()
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		paths = append(paths, path)
	}

	updated, err := s.properties.AddImages(r.Context(), prop.ID, paths)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toPropertyResponse(updated))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	prop, ok := s.mutableProperty(w, r)
	if !ok {
		return
	}

	if err := s.properties.Delete(r.Context(), prop.ID); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Property deleted",
	})
}

// mutableProperty loads the target listing and enforces the owner-or-admin
// rule shared by update, delete and image upload. On failure it has already
// written the response.
func (s *Server) mutableProperty(w http.ResponseWriter, r *http.Request) (property.Property, bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return property.Property{}, false
	}

	prop, err := s.properties.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, err)
		return property.Property{}, false
	}

	if prop.UserID != user.ID && user.Role != auth.RoleAdmin {
		respondError(w, http.StatusForbidden, "Not authorized")
		return property.Property{}, false
	}

	return prop, true
}
